package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewRecordModal(t *testing.T) {
	assert.True(t, IsNewRecordModal("/lightning/o/Contact/new"))
	assert.True(t, IsNewRecordModal("/lightning/o/Account/new"))
	assert.True(t, IsNewRecordModal("/lightning/o/Lead/new"))
	assert.True(t, IsNewRecordModal("https://org.lightning.force.com/lightning/o/Contact/new?backgroundContext=%2Flightning%2Fpage%2Fhome"))

	assert.False(t, IsNewRecordModal("/lightning/r/Contact/003xx/view"))
	assert.False(t, IsNewRecordModal("/lightning/page/home"))
	assert.False(t, IsNewRecordModal(""))
}

func TestBackgroundContextPath(t *testing.T) {
	assert.Equal(t, "/lightning/page/home",
		BackgroundContextPath("/lightning/o/Contact/new?backgroundContext=%2Flightning%2Fpage%2Fhome"))

	assert.Equal(t, "/lightning/r/Account/001xx/view",
		BackgroundContextPath("https://org.lightning.force.com/lightning/o/Lead/new?backgroundContext=https%3A%2F%2Forg.lightning.force.com%2Flightning%2Fr%2FAccount%2F001xx%2Fview"))

	assert.Equal(t, "", BackgroundContextPath("/lightning/o/Contact/new"))
	assert.Equal(t, "", BackgroundContextPath(""))
}

func TestSameURL(t *testing.T) {
	assert.True(t, SameURL("/lightning/page/home", "/lightning/page/home"))
	assert.True(t, SameURL(" /lightning/page/home ", "/lightning/page/home"))
	assert.False(t, SameURL("/lightning/page/home", "/lightning/page/home2"))
}

func TestPathOf(t *testing.T) {
	assert.Equal(t, "/lightning/page/home", PathOf("https://org.example.com/lightning/page/home?x=1"))
	assert.Equal(t, "/lightning/page/home", PathOf("/lightning/page/home"))
}
