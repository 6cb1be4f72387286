package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	opts := NewOptions()
	opts.Password = "secret"

	dsn := BuildDSN(opts)
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/governor?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestBuildDSN_EscapesPassword(t *testing.T) {
	opts := NewOptions()
	opts.Password = "p@ss/word:1"

	dsn := BuildDSN(opts)
	assert.Contains(t, dsn, "p%40ss%2Fword%3A1")
	assert.NotContains(t, dsn, "p@ss/word:1")
}
