package source

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestResult(t *testing.T) {
	test.That(t, ResultOk.Failed(), test.ShouldBeNil)
	test.That(t, ResultOk.String(), test.ShouldEqual, "Ok")

	err := ResultTimeout.Failed()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "Timeout")

	var resErr ResultError
	test.That(t, errors.As(ResultClosed.Failed(), &resErr), test.ShouldBeTrue)
	test.That(t, resErr.Result, test.ShouldEqual, ResultClosed)

	test.That(t, Result(99).String(), test.ShouldEqual, "Unknown")
}
