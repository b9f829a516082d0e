// Package grade resolves user-facing difficulty and style labels into the
// numeric parameters the search engine consumes.
package grade

import (
	"regexp"
	"strings"

	"kiltergen/internal/model"
)

// Normalized difficulty assigned when an input cannot be parsed (a V5
// equivalent).
const FallbackDifficulty = 0.45

// Soft/hard modifiers shift the base difficulty by a fixed margin.
const modifierShift = 0.03

var vScale = map[string]float64{
	"V0": 0.05, "V1": 0.10, "V2": 0.15,
	"V3": 0.25, "V4": 0.35, "V5": 0.45,
	"V6": 0.55, "V7": 0.60, "V8": 0.70,
	"V9": 0.78, "V10": 0.85, "V11": 0.92,
	"V12": 0.96, "V13": 0.98, "V14": 1.00,
}

var fbScale = map[string]float64{
	"5A": 0.10, "5B": 0.15, "5C": 0.20,
	"6A": 0.30, "6A+": 0.35,
	"6B": 0.40, "6B+": 0.45,
	"6C": 0.50, "6C+": 0.55,
	"7A": 0.60, "7A+": 0.65,
	"7B": 0.70, "7B+": 0.75,
	"7C": 0.80, "7C+": 0.85,
	"8A": 0.90, "8A+": 0.92,
	"8B": 0.94, "8B+": 0.96,
	"8C": 0.98, "8C+": 1.00,
}

var vGradePattern = regexp.MustCompile(`^V(\d+)`)

// ParseDifficulty converts a grade label ("V4", "6B+", "soft 7A", "6A-6C")
// into a normalized difficulty in [0,1]. A leading V grade wins outright, so
// "V3-V5" resolves to V3; only ranges the scale tables miss average their
// endpoints. Unparseable input falls back to FallbackDifficulty rather than
// erroring; the engine treats difficulty as best-effort.
func ParseDifficulty(input string) float64 {
	text := strings.ToUpper(strings.TrimSpace(input))

	soft := strings.Contains(text, "SOFT")
	hard := strings.Contains(text, "HARD")
	text = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "SOFT", ""), "HARD", ""))

	if m := vGradePattern.FindStringSubmatch(text); m != nil {
		if base, ok := vScale["V"+m[1]]; ok {
			return clamp01(applyModifiers(base, soft, hard))
		}
	}

	if base, ok := fbScale[text]; ok {
		return clamp01(applyModifiers(base, soft, hard))
	}

	// Ranges that missed both scales average their endpoints.
	if strings.Contains(text, "-") {
		parts := strings.SplitN(text, "-", 2)
		if len(parts) == 2 {
			lo := ParseDifficulty(parts[0])
			hi := ParseDifficulty(parts[1])
			return clamp01((lo + hi) / 2)
		}
	}

	return FallbackDifficulty
}

// Recognized style keywords.
const (
	StyleDynamic   = "Dynamic"
	StyleCrimpy    = "Crimpy/Technical"
	StyleTraverse  = "Traverse/Endurance"
	StyleSloperPin = "Sloper/Pinch"
)

// StyleKeywords lists every keyword ParseStyle understands.
func StyleKeywords() []string {
	return []string{StyleDynamic, StyleCrimpy, StyleTraverse, StyleSloperPin}
}

// DefaultStyleParams returns the balanced parameter set used when no style
// keyword is active.
func DefaultStyleParams() model.StyleParams {
	return model.StyleParams{
		ReachMin:        0.05,
		ReachMax:        0.35,
		AvgMoveDist:     0.18,
		VariancePenalty: 5.0,
		DynamicWeight:   0.0,
	}
}

// ParseStyle applies active style keywords on top of the defaults. Unknown
// keywords are ignored. Later keywords win where fields overlap.
func ParseStyle(active []string) model.StyleParams {
	params := DefaultStyleParams()
	for _, style := range active {
		switch style {
		case StyleDynamic:
			// Bigger, less consistent moves.
			params.AvgMoveDist = 0.25
			params.VariancePenalty = 2.0
			params.DynamicWeight = 0.5
			params.ReachMax = 0.45
		case StyleCrimpy:
			// Smaller, more precise moves.
			params.AvgMoveDist = 0.12
			params.VariancePenalty = 7.0
			params.ReachMax = 0.25
		case StyleTraverse:
			// Consistent medium moves.
			params.AvgMoveDist = 0.15
		case StyleSloperPin:
			// Reserved hold-size preference; not consumed by scoring.
			size := 0.7
			params.AvgHoldSize = &size
		}
	}
	return params
}

func applyModifiers(base float64, soft, hard bool) float64 {
	if soft {
		base -= modifierShift
	}
	if hard {
		base += modifierShift
	}
	return base
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
