package stats

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/shelfscout"
)

// ScoreInput is what the quality score of a domain record depends on.
type ScoreInput struct {
	DescriptionLength int
	Success           bool
	DetectionSuccess  bool
	Quality           shelfscout.Quality
}

// CalculateQualityScore scores a record from 0 to 5. Only the highest
// length tier applies.
func CalculateQualityScore(in ScoreInput) int {
	var score float64
	switch {
	case in.DescriptionLength >= 1200:
		score += 2
	case in.DescriptionLength >= 800:
		score += 1.5
	case in.DescriptionLength >= 600:
		score += 1
	case in.DescriptionLength >= 400:
		score += 0.5
	}
	if in.Success {
		score++
	}
	if in.DetectionSuccess {
		score += 0.5
	}
	switch in.Quality {
	case shelfscout.QualityExcellent:
		score += 1.5
	case shelfscout.QualityGood:
		score++
	case shelfscout.QualityFair:
		score += 0.5
	}
	return int(math.Round(math.Max(0, math.Min(5, score))))
}

// EstimateCaptureRate returns the capture rate of extracted against
// estimated characters. Without an estimate it falls back to a
// length-based guess.
func EstimateCaptureRate(extracted, estimated int) int {
	if estimated > 0 {
		return shelfscout.CaptureRate(extracted, estimated)
	}
	if extracted > 600 {
		return 75
	}
	return 50
}

// ContentHash fingerprints a description so content changes between runs
// can be detected.
func ContentHash(content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
