package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	i, note := Pick([]string{"Set to Active", "Set to 'A'"}, "status_cd")
	assert.Equal(t, 0, i)
	assert.Equal(t, "NOTE: merged 2 variants for target column 'status_cd'", note)

	i, note = Pick([]string{"Set to 'A'", "Set to 'B'"}, "c")
	assert.Equal(t, 0, i, "ties go to the first row")
	assert.Contains(t, note, "merged 2 variants")

	i, note = Pick([]string{"", "Straight move"}, "c")
	assert.Equal(t, 1, i)
	assert.Equal(t, "NOTE: merged 2 duplicate definitions for target column 'c'", note)

	i, note = Pick([]string{"x"}, "c")
	assert.Equal(t, 0, i)
	assert.Empty(t, note)

	i, _ = Pick(nil, "c")
	assert.Equal(t, -1, i)
}
