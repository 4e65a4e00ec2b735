package quality

// Classify maps a reading's features to a label. Rules overlap, so they are
// checked in priority order and the first match wins. Bounds are inclusive
// exactly where written: turb_idx == 50 is MODERATE territory, not GOOD.
func Classify(turbIdx, chlRatio, bgRatio float64) Label {
	t, c, b := turbIdx, chlRatio, bgRatio

	if t < 50 && c < 0.5 && b > 1.0 {
		return Good
	}

	if 50 <= t && t <= 150 && 0.5 <= c && c <= 1.0 && 0.6 <= b && b <= 1.0 {
		return Moderate
	}

	if (150 <= t && t <= 300) || (1.0 <= c && c <= 1.5 && b < 0.6) {
		return Poor
	}

	if t > 300 || (c > 1.5 && b < 0.5) {
		return VeryPoor
	}

	return Unknown
}

// ClassifyReading is Classify over a Reading.
func ClassifyReading(r Reading) Label {
	return Classify(r.TurbIdx, r.ChlRatio, r.BgRatio)
}

// LabelReadings applies the rule classifier to every reading, keeps the
// resolved rows in input order and counts the UNKNOWN rows it dropped.
func LabelReadings(readings []Reading) (labeled []LabeledReading, discarded int) {
	labeled = make([]LabeledReading, 0, len(readings))
	for _, r := range readings {
		label := ClassifyReading(r)
		if label == Unknown {
			discarded++
			continue
		}
		labeled = append(labeled, LabeledReading{Reading: r, Label: label})
	}
	return labeled, discarded
}
