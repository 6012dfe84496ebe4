package search

// Display price labels per locale. The raw symbol comes straight from
// the model; anything unrecognized reads as "$".
var priceLabels = map[string]map[string]string{
	"zh-TW": {
		"$":    "$ (平價)",
		"$$":   "$$ (稍貴)",
		"$$$":  "$$$ (昂貴)",
		"$$$$": "$$$$ (天價)",
		"-":    "-",
	},
	"en": {
		"$":    "$ (Cheap)",
		"$$":   "$$ (Moderate)",
		"$$$":  "$$$ (Expensive)",
		"$$$$": "$$$$ (Very Expensive)",
		"-":    "-",
	},
	"ja": {
		"$":    "$ (安い)",
		"$$":   "$$ (普通)",
		"$$$":  "$$$ (高い)",
		"$$$$": "$$$$ (高級)",
		"-":    "-",
	},
}

// FormatPriceLevel localizes a raw $..$$$$/- symbol for display.
func FormatPriceLevel(raw, language string) string {
	table, ok := priceLabels[language]
	if !ok {
		table = priceLabels["zh-TW"]
	}
	if label, ok := table[raw]; ok {
		return label
	}
	return table["$"]
}
