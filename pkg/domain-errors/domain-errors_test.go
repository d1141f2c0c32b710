package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "unknown capability"}
		s.Equal("unknown capability", err.Error())
	})

	s.Run("code when message is empty", func() {
		err := &Error{Code: CodeUnavailable}
		s.Equal("unavailable", err.Error())
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesExistingCode() {
	inner := New(CodeValidation, "provider must be one of [finelocation coarselocation]")
	wrapped := Wrap(inner, CodeInternal, "request rejected")

	s.True(HasCode(wrapped, CodeValidation), "original code must survive wrapping")
	s.Equal("request rejected", wrapped.Error())
	s.ErrorIs(wrapped, inner)
}

func (s *DomainErrorsSuite) TestWrapAssignsCodeToPlainErrors() {
	inner := errors.New("dial tcp: connection refused")
	wrapped := Wrap(inner, CodeUnavailable, "collection endpoint unreachable")

	s.True(HasCode(wrapped, CodeUnavailable))
	s.ErrorIs(wrapped, inner)
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	a := New(CodeNotFound, "a")
	b := New(CodeNotFound, "b")
	c := New(CodeBadRequest, "c")

	s.ErrorIs(a, b)
	s.NotErrorIs(a, c)
	s.NotErrorIs(a, errors.New("not_found"))
}

func (s *DomainErrorsSuite) TestHasCodeThroughFmtWrapping() {
	err := fmt.Errorf("handler: %w", New(CodeUnauthorized, "missing app token"))
	s.True(HasCode(err, CodeUnauthorized))
	s.False(HasCode(err, CodeForbidden))
	s.False(HasCode(nil, CodeUnauthorized))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	code, ok := CodeOf(fmt.Errorf("relay: %w", New(CodeUnavailable, "collector down")))
	s.True(ok)
	s.Equal(CodeUnavailable, code)

	_, ok = CodeOf(errors.New("plain"))
	s.False(ok)
}
