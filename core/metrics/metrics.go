// Package metrics implements the point-forecast accuracy metrics used to
// evaluate MCC aggregate forecasts: sMAPE, RMSSE, MAE and RMSE.
//
// Every function is pure: inputs are read-only and the result depends only on
// the arguments.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon is added to denominators that may legitimately be zero.
const Epsilon = 1e-8

// Sentinel errors for violated preconditions.
var (
	// ErrShapeMismatch is returned when parallel arrays differ in length.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInsufficientHistory is returned when the training series is too short
	// to take a first difference.
	ErrInsufficientHistory = errors.New("insufficient training history")

	// ErrEmptyInput is returned when there are no samples to evaluate.
	ErrEmptyInput = errors.New("empty input")
)

// checkPair validates the true/predicted pair shared by every metric.
func checkPair(yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: y_true has %d samples, y_pred has %d", ErrShapeMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return ErrEmptyInput
	}
	return nil
}

// SMAPE returns the symmetric mean absolute percentage error, in percent.
func SMAPE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	terms := make([]float64, len(yTrue))
	for i := range yTrue {
		terms[i] = 2 * math.Abs(yPred[i]-yTrue[i]) / (math.Abs(yTrue[i]) + math.Abs(yPred[i]) + Epsilon)
	}
	return 100 * stat.Mean(terms, nil), nil
}

// MSE returns the mean squared error.
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	diff := make([]float64, len(yTrue))
	floats.SubTo(diff, yTrue, yPred)
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// MAE returns the mean absolute error.
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// RMSE returns the root mean squared error.
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// Scale returns the mean squared one-step naive forecast error of the
// training series, i.e. mean((train[t] - train[t-1])^2). It is never negative.
func Scale(yTrain []float64) (float64, error) {
	if len(yTrain) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 training points, got %d", ErrInsufficientHistory, len(yTrain))
	}
	diff := make([]float64, len(yTrain)-1)
	floats.SubTo(diff, yTrain[1:], yTrain[:len(yTrain)-1])
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// RMSSE returns the root mean squared scaled error: the forecast MSE divided
// by the naive in-sample scale of yTrain. A constant training series yields a
// very large but finite value because Epsilon keeps the denominator positive.
func RMSSE(yTrue, yPred, yTrain []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	scale, err := Scale(yTrain)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse / (scale + Epsilon)), nil
}
