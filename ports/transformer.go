package ports

// Transformer is a stateless-per-fit feature preprocessor. Each FitTransform
// call fits from scratch on the given matrix and returns the transformed
// matrix; no state survives between calls.
type Transformer interface {
	FitTransform(X [][]float64) ([][]float64, error)
}
