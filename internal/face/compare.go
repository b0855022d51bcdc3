// Package face holds biometric embedding math and the face profile service.
// Embeddings are fixed-length vectors produced upstream by the mobile client;
// this package never sees an image pixel.
package face

import "math"

const (
	// MinEmbeddingLength and MaxEmbeddingLength bound acceptable vector
	// sizes. Typical capture pipelines emit 128 or 512 components.
	MinEmbeddingLength = 64
	MaxEmbeddingLength = 1024

	// minMagnitude rejects near-zero vectors, which indicate a blank or
	// failed capture rather than a face.
	minMagnitude = 0.1

	// DefaultMatchThreshold is the comparator's own confidence gate.
	// The attendance flow passes a stricter business threshold explicitly.
	DefaultMatchThreshold = 0.6

	// maxEuclideanDistance is a hard ceiling independent of the blended
	// score: a raw distance past this is physically implausible for a true
	// match, no matter how favorable the cosine term is.
	maxEuclideanDistance = 0.6

	// minQuality is the floor for ValidateQuality acceptance.
	minQuality = 0.3
)

// ComparisonResult is the outcome of comparing two embeddings.
type ComparisonResult struct {
	IsMatch    bool    `json:"isMatch"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Err        string  `json:"error,omitempty"`
}

// QualityResult is the outcome of scoring a single embedding.
type QualityResult struct {
	Valid     bool    `json:"valid"`
	Quality   float64 `json:"quality"`
	Variance  float64 `json:"variance"`
	Magnitude float64 `json:"magnitude"`
	Reason    string  `json:"reason,omitempty"`
}

// Compare measures how close a candidate embedding is to a stored reference.
// Confidence blends Euclidean distance and cosine similarity:
//
//	distanceScore   = max(0, 1 - distance/2)
//	similarityScore = (cosine + 1) / 2
//	confidence      = 0.6*distanceScore + 0.4*similarityScore, clamped to [0,1]
//
// A match requires BOTH confidence >= threshold AND raw distance <= 0.6.
// Invalid inputs (length mismatch, out-of-bounds length, NaN components)
// yield isMatch=false, confidence 0, distance 999 with Err set.
func Compare(stored, candidate []float64, threshold float64) ComparisonResult {
	if reason := validatePair(stored, candidate); reason != "" {
		return ComparisonResult{
			IsMatch:    false,
			Confidence: 0,
			Distance:   999,
			Threshold:  threshold,
			Err:        reason,
		}
	}

	distance := euclideanDistance(stored, candidate)
	similarity := cosineSimilarity(stored, candidate)

	distanceScore := math.Max(0, 1-distance/2.0)
	similarityScore := (similarity + 1) / 2
	confidence := clamp01(0.6*distanceScore + 0.4*similarityScore)

	return ComparisonResult{
		IsMatch:    confidence >= threshold && distance <= maxEuclideanDistance,
		Confidence: confidence,
		Distance:   distance,
		Similarity: similarity,
		Threshold:  threshold,
	}
}

// ValidateQuality scores a single embedding for enrollment. Quality blends
// vector variance and magnitude: quality = min(1, variance*10 * magnitude/10);
// valid iff quality >= 0.3.
func ValidateQuality(embedding []float64) QualityResult {
	if len(embedding) < MinEmbeddingLength || len(embedding) > MaxEmbeddingLength {
		return QualityResult{Valid: false, Reason: "embedding length out of bounds"}
	}
	for _, v := range embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return QualityResult{Valid: false, Reason: "embedding contains invalid values"}
		}
	}

	magnitude := magnitude(embedding)
	if magnitude < minMagnitude {
		return QualityResult{Valid: false, Magnitude: magnitude, Reason: "embedding magnitude too low, likely blank capture"}
	}

	variance := variance(embedding)
	quality := math.Min(1, variance*10*magnitude/10)

	res := QualityResult{
		Valid:     quality >= minQuality,
		Quality:   quality,
		Variance:  variance,
		Magnitude: magnitude,
	}
	if !res.Valid {
		res.Reason = "embedding quality too low, retake capture"
	}
	return res
}

func validatePair(a, b []float64) string {
	if len(a) == 0 || len(b) == 0 {
		return "embedding missing"
	}
	if len(a) != len(b) {
		return "embedding length mismatch"
	}
	if len(a) < MinEmbeddingLength || len(a) > MaxEmbeddingLength {
		return "embedding length out of bounds"
	}
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			return "embedding contains invalid values"
		}
	}
	return ""
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

func magnitude(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func variance(v []float64) float64 {
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))

	var sum float64
	for _, x := range v {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(v))
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
