package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
)

func TestSelectPoolFilters(t *testing.T) {
	profiles := []db.User{
		{ID: 1, Interests: []string{"chess"}},  // the caller: excluded
		{ID: 2, Interests: []string{"hiking"}}, // eligible
		{ID: 3, Interests: []string{}},         // no interests: excluded
		{ID: 4, Interests: []string{"chess"}},  // recently matched: excluded
		{ID: 5, Interests: []string{"poetry"}}, // eligible
	}
	exclude := map[uint64]struct{}{4: {}}

	pool := SelectPool(profiles, 1, exclude)

	assert.Len(t, pool, 2)
	// input order (most recently active first) is preserved
	assert.Equal(t, uint64(2), pool[0].ID)
	assert.Equal(t, uint64(5), pool[1].ID)
}

func TestSelectPoolEmpty(t *testing.T) {
	pool := SelectPool(nil, 1, nil)
	assert.Empty(t, pool)

	pool = SelectPool([]db.User{{ID: 1, Interests: []string{"chess"}}}, 1, nil)
	assert.Empty(t, pool)
}
