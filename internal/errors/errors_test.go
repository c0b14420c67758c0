package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"gostatcheck/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"missing column", core.NewColumnNotFoundError("group"), CodeNotFound},
		{"non numeric", core.NewFeatureError("normality", "city", core.ErrNonNumeric), CodeInvalidInput},
		{"zero range", core.NewFeatureError("normality", "x", core.ErrZeroRange), CodeComputationError},
		{"unknown", stderrors.New("boom"), CodeInternalError},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ClassifyDomain(tt.err))
		})
	}
}

func TestWrapKeepsDomainCodeAndChain(t *testing.T) {
	err := Wrapf(core.NewFeatureError("levene", "income", core.ErrTooFewGroups), "homogeneity check")

	assert.Equal(t, CodeComputationError, GetCode(err))
	assert.ErrorIs(t, err, core.ErrTooFewGroups)
	assert.Contains(t, err.Error(), "homogeneity check")
	assert.Equal(t, 5, ExitCode(err))
}

func TestWrapPreservesAppErrorCode(t *testing.T) {
	inner := IOError("open workbook", fmt.Errorf("permission denied"))
	err := Wrap(inner, "loading input")

	assert.Equal(t, CodeIOError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Nil(t, Wrap(nil, "x"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, stderrors.New("bad alpha"))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, 2, ExitCode(err))
	assert.Equal(t, 0, ExitCode(nil))
}
