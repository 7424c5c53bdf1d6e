package ports

// AnalysisQueue accepts songs for background post-upload analysis.
type AnalysisQueue interface {
	Enqueue(songID string)
}
