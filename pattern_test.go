package relay

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PatternSuite struct {
	suite.Suite
}

func TestPatternSuite(t *testing.T) {
	suite.Run(t, new(PatternSuite))
}

func (s *PatternSuite) compile(criteria, separators string) *pattern {
	p, err := compilePattern(criteria, separators)
	s.Require().NoError(err)
	return p
}

func (s *PatternSuite) TestLiteralMatch() {
	p := s.compile("/users/list", "")

	_, ok := p.match("/users/list")
	s.Assert().True(ok)

	_, ok = p.match("/users/other")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestNamedCapture() {
	p := s.compile("/user/:id", "")

	params, ok := p.match("/user/42")
	s.Require().True(ok)
	s.Assert().Equal(map[string]string{"id": "42"}, params)
}

func (s *PatternSuite) TestMultipleCaptures() {
	p := s.compile("/:kind/:id", "")

	params, ok := p.match("/order/7")
	s.Require().True(ok)
	s.Assert().Equal("order", params["kind"])
	s.Assert().Equal("7", params["id"])
}

func (s *PatternSuite) TestCaptureDoesNotCrossSeparator() {
	p := s.compile("/user/:id", "")

	_, ok := p.match("/user/42/profile")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestWildcardMatchesSegment() {
	p := s.compile("/a/*", "")

	_, ok := p.match("/a/b")
	s.Assert().True(ok)
}

func (s *PatternSuite) TestWildcardDoesNotCrossSeparator() {
	p := s.compile("/a/*", "")

	_, ok := p.match("/a/b/c")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestWildcardWithOtherSeparatorSet() {
	// With "." as the separator, "/" is an ordinary character, so the
	// wildcard is free to cross it.
	p := s.compile("a.*", ".")

	_, ok := p.match("a.b/c")
	s.Assert().True(ok)

	_, ok = p.match("a.b.c")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestWildcardInsideSegment() {
	p := s.compile("/files/report-*.csv", "")

	_, ok := p.match("/files/report-2024.csv")
	s.Assert().True(ok)

	_, ok = p.match("/files/summary-2024.csv")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestDoubleWildcardPattern() {
	p := s.compile("/*/*", "")

	_, ok := p.match("/test/123")
	s.Assert().True(ok)

	_, ok = p.match("/test")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestEmptyCriteriaMatchesOnlyEmptySubject() {
	p := s.compile("", "")

	_, ok := p.match("")
	s.Assert().True(ok)

	_, ok = p.match("/anything")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestEmptySubjectNeverMatchesNonEmptyPattern() {
	p := s.compile("/user/:id", "")

	_, ok := p.match("")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestRunsOfSeparatorsCollapse() {
	p := s.compile("//user///:id", "")

	params, ok := p.match("/user/42")
	s.Require().True(ok)
	s.Assert().Equal("42", params["id"])
}

func (s *PatternSuite) TestLiteralSpecialCharsAreEscaped() {
	p := s.compile("/v1.0/ping", "/")

	_, ok := p.match("/v1.0/ping")
	s.Assert().True(ok)

	// The dot must not act as a regex wildcard.
	_, ok = p.match("/v1x0/ping")
	s.Assert().False(ok)
}

func (s *PatternSuite) TestMultiCharSeparatorSet() {
	p := s.compile("user.:id/detail", "./")

	params, ok := p.match("user.9/detail")
	s.Require().True(ok)
	s.Assert().Equal("9", params["id"])
}

func (s *PatternSuite) TestInvalidCaptureNameFailsCompilation() {
	_, err := compilePattern("/user/:id-x", "")
	s.Assert().ErrorIs(err, ErrInvalidPattern)
}
