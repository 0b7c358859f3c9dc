package camera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquareStaysInBounds(t *testing.T) {
	for _, size := range []int{1, 7, 64, 400, 1024} {
		cam := Square{Size: size}
		for i := 0; i <= 400; i++ {
			for j := 0; j <= 400; j += 37 {
				x := -2 + 4*float64(i)/401
				y := -2 + 4*float64(j)/401
				px, py := cam.Project(x, y)
				assert.True(t, InBounds(px, py, size, size), "size=%d (%v,%v) -> (%d,%d)", size, x, y, px, py)
			}
		}
	}
}

func TestSquareEdges(t *testing.T) {
	cam := Square{Size: 400}

	px, py := cam.Project(-2, -2)
	assert.Equal(t, 0, px)
	assert.Equal(t, 0, py)

	justUnder := math.Nextafter(2, 0)
	px, py = cam.Project(justUnder, justUnder)
	assert.Equal(t, 399, px)
	assert.Equal(t, 399, py)

	px, _ = cam.Project(2, 0)
	assert.False(t, InBounds(px, 0, 400, 400))

	px, py = cam.Project(0, 0)
	assert.Equal(t, 200, px)
	assert.Equal(t, 200, py)
}

func TestNonFiniteIsOffscreen(t *testing.T) {
	cams := []Projector{Square{Size: 10}, Unit{Width: 10, Height: 10}, NewView(10, 10)}
	for _, cam := range cams {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300} {
			px, py := cam.Project(v, v)
			assert.False(t, InBounds(px, py, 10, 10), "%T %v", cam, v)
		}
	}
}

func TestUnit(t *testing.T) {
	cam := Unit{Width: 100, Height: 50}
	px, py := cam.Project(0.5, 0.5)
	assert.Equal(t, 50, px)
	assert.Equal(t, 25, py)

	px, py = cam.Project(-0.001, 1)
	assert.Equal(t, -1, px)
	assert.Equal(t, 50, py)
}

func TestViewDefaultMatchesSquare(t *testing.T) {
	view := NewView(256, 256)
	sq := Square{Size: 256}
	for _, p := range [][2]float64{{0, 0}, {-1.5, 1.25}, {1.99, -1.99}, {0.3, 0.7}} {
		vx, vy := view.Project(p[0], p[1])
		sx, sy := sq.Project(p[0], p[1])
		assert.Equal(t, sx, vx)
		assert.Equal(t, sy, vy)
	}
}

func TestViewOperationOrder(t *testing.T) {
	view := View{Width: 100, Height: 100, OffsetX: 1, Rotate: math.Pi / 2, Zoom: 1, Scale: 10}

	// (2,0) - offset -> (1,0); rotate 90° -> (0,1); zoom 2 -> (0,2); scale -> (0,20); center -> (50,70)
	px, py := view.Project(2, 0)
	assert.Equal(t, 50, px)
	assert.Equal(t, 70, py)
}

func TestViewNonSquare(t *testing.T) {
	view := NewView(200, 100)
	assert.Equal(t, 50.0, view.Scale)

	px, py := view.Project(0, 0)
	assert.Equal(t, 100, px)
	assert.Equal(t, 50, py)
}
