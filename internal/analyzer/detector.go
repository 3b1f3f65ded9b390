package analyzer

import (
	"log/slog"
	"regexp"

	"github.com/harunari/meisai/internal/model"
)

// Keyword tier scores. Brand names are near-conclusive, service and program
// names are strong hints, incidental terms barely nudge the score.
const (
	scorePrimary   = 3
	scoreSecondary = 2
	scoreWeak      = 1
)

// carrierSignature holds the tiered keyword patterns for one carrier.
type carrierSignature struct {
	carrier   model.Carrier
	primary   *regexp.Regexp
	secondary *regexp.Regexp
	weak      *regexp.Regexp
}

// Detector guesses the carrier from raw invoice text. It holds only compiled
// patterns and is safe for concurrent use.
type Detector struct {
	signatures []carrierSignature
}

// NewDetector builds a detector for the known carriers. Signature order is
// the registration order; score ties break toward the earlier carrier.
func NewDetector() *Detector {
	return &Detector{
		signatures: []carrierSignature{
			{
				carrier:   model.CarrierSoftbank,
				primary:   regexp.MustCompile(`(?i)my\s*softbank|ソフトバンク|softbank`),
				secondary: regexp.MustCompile(`(?i)おうち割|s!|y!mobile|あんしん保証`),
				weak:      regexp.MustCompile(`(?i)paypay|wi-fi|メール`),
			},
			{
				carrier:   model.CarrierAu,
				primary:   regexp.MustCompile(`(?i)my\s*au|au|kddi`),
				secondary: regexp.MustCompile(`(?i)スマートバリュー|家族割プラス|ピタット|使い放題max`),
				weak:      regexp.MustCompile(`(?i)lte\s*net|applecare`),
			},
			{
				carrier:   model.CarrierDocomo,
				primary:   regexp.MustCompile(`(?i)docomo|ドコモ|my\s*docomo`),
				secondary: regexp.MustCompile(`(?i)spモード|dカード|ギガホ|ギガライト`),
				weak:      regexp.MustCompile(`(?i)5g|みんなドコモ`),
			},
		},
	}
}

// Detect returns the carrier with the strictly highest nonzero score, or
// generic when nothing matches.
func (d *Detector) Detect(text string) model.Carrier {
	best := model.CarrierGeneric
	bestScore := 0

	for _, sig := range d.signatures {
		score := 0
		if sig.primary.MatchString(text) {
			score += scorePrimary
		}
		if sig.secondary.MatchString(text) {
			score += scoreSecondary
		}
		if sig.weak.MatchString(text) {
			score += scoreWeak
		}
		if score > bestScore {
			best = sig.carrier
			bestScore = score
		}
	}

	slog.Debug("carrier detection", "carrier", best, "score", bestScore)
	return best
}
