package domain

// Prediction is the outcome of a mood classification. It is one of
// MoodPrediction, Unclassifiable or ClassificationError; callers switch on
// the concrete type.
type Prediction interface {
	isPrediction()
}

// MoodPrediction is a successful classification.
type MoodPrediction struct {
	Mood       Mood    `json:"mood"`
	Confidence float64 `json:"confidence"`
	// NativeLabel is the model label the mood was mapped from.
	NativeLabel string `json:"-"`
}

// Unclassifiable means the input was too short to classify. No model call
// was made.
type Unclassifiable struct {
	Reason string
}

// ClassificationError wraps a model load or inference fault.
type ClassificationError struct {
	Message string
}

func (MoodPrediction) isPrediction()      {}
func (Unclassifiable) isPrediction()      {}
func (ClassificationError) isPrediction() {}

func (e ClassificationError) Error() string {
	return e.Message
}
