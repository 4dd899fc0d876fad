package digest

import (
	"crypto"
	"crypto/sha1"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DigestSuite struct {
	suite.Suite
}

func TestDigestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(DigestSuite))
}

func (s *DigestSuite) TestComputeMatchesSHA256() {
	fn := SHA256()
	d := fn.Compute([]byte("hi"))

	want := sha256.Sum256([]byte("hi"))
	s.Equal(want[:], d.Sum())
	s.Equal(int64(2), d.SizeBytes())
	s.Equal(crypto.SHA256, d.Algorithm())
	s.False(d.IsZero())
}

func (s *DigestSuite) TestSHA1Function() {
	fn, err := New(crypto.SHA1)
	s.NoError(err)

	d := fn.Compute([]byte("hi"))
	want := sha1.Sum([]byte("hi"))
	s.Equal(want[:], d.Sum())
	s.Equal(crypto.SHA1, d.Algorithm())
}

func (s *DigestSuite) TestNewUnsupported() {
	_, err := New(crypto.MD5)
	s.ErrorIs(err, ErrUnsupportedHashFunction)
}

func (s *DigestSuite) TestEmpty() {
	fn := SHA256()
	s.Equal(fn.Compute(nil), fn.Empty())
	s.Equal(int64(0), fn.Empty().SizeBytes())
	s.False(fn.Empty().IsZero())
}

func (s *DigestSuite) TestFromReader() {
	fn := SHA256()
	d, err := fn.FromReader(strings.NewReader("some content"))
	s.NoError(err)
	s.Equal(fn.Compute([]byte("some content")), d)
	s.Equal(int64(12), d.SizeBytes())
}

func (s *DigestSuite) TestFromContentHash() {
	fn := SHA256()
	d := fn.Compute([]byte("hi"))

	got, err := fn.FromContentHash(d.Sum(), d.SizeBytes())
	s.NoError(err)
	s.Equal(d, got)

	_, err = fn.FromContentHash([]byte{0x01, 0x02}, 2)
	s.ErrorIs(err, ErrInvalidSum)
}

func (s *DigestSuite) TestFromSum() {
	d, ok := FromSum(make([]byte, SHA1Size), 42)
	s.True(ok)
	s.Equal(crypto.SHA1, d.Algorithm())
	s.Equal(int64(42), d.SizeBytes())

	d, ok = FromSum(make([]byte, SHA256Size), 42)
	s.True(ok)
	s.Equal(crypto.SHA256, d.Algorithm())

	_, ok = FromSum(make([]byte, 7), 42)
	s.False(ok)
}

func (s *DigestSuite) TestString() {
	fn := SHA256()
	d := fn.Compute([]byte("hi"))
	s.True(strings.HasSuffix(d.String(), "/2"))
	s.Equal("", Digest{}.String())
}

func (s *DigestSuite) TestMapKey() {
	fn := SHA256()
	m := map[Digest]string{}
	m[fn.Compute([]byte("hi"))] = "first"
	m[fn.Compute([]byte("hi"))] = "second"

	s.Len(m, 1)
	s.Equal("second", m[fn.Compute([]byte("hi"))])
}
