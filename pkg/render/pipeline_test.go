package render

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taigrr/tunnelrun/pkg/game"
	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/obstacle"
)

func TestPipelineRendersGame(t *testing.T) {
	fb := NewFramebuffer(64, 36)
	p := NewPipeline(fb)

	g := game.New(game.DefaultConfig(), rand.New(rand.NewSource(7)), zerolog.Nop())
	g.Camera().SetAspectRatio(float64(fb.Width) / float64(fb.Height))

	if err := g.Draw(p); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// The camera is inside the tube, so walls fill the view.
	lit := 0
	for _, px := range fb.Pixels {
		if px != p.Background {
			lit++
		}
	}
	if lit < len(fb.Pixels)/2 {
		t.Errorf("only %d of %d pixels drawn", lit, len(fb.Pixels))
	}
	if s := p.Rasterizer().CullingStats; s.MeshesTested != 2 || s.MeshesDrawn < 1 {
		t.Errorf("culling stats = %+v", s)
	}
}

func TestPipelineSpecialView(t *testing.T) {
	fb := NewFramebuffer(16, 16)
	p := NewPipeline(fb)

	u := game.Uniforms{ViewProj: math3d.Identity(), Special: true, Flash: 1}
	if err := p.Render(u, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fb.GetPixel(3, 3) != InvertColor(p.Background) {
		t.Errorf("background = %v, want inverted", fb.GetPixel(3, 3))
	}
}

func TestPipelineObstacleWireframe(t *testing.T) {
	eye := math3d.V3(0, 0, 0)
	view := math3d.LookAt(eye, math3d.V3(0, 0, -1), math3d.V3(0, 1, 0))
	cube := obstacle.FromSpec(obstacle.SpecFor(obstacle.KindSlab), math3d.V3(0, 0, -30), math3d.V3(0, 0, -1), 0, 0)
	d := []game.Drawable{{Transform: cube.Placement(), Mesh: obstacle.Mesh(), Material: game.MaterialObstacle}}

	count := func(special bool) int {
		fb := NewFramebuffer(48, 48)
		p := NewPipeline(fb)
		u := game.Uniforms{
			ViewProj: math3d.Perspective(0.8, 1, 0.1, 1000).Mul(view),
			Eye:      eye,
			Forward:  math3d.V3(0, 0, -1),
			Special:  special,
			Flash:    1,
		}
		if err := p.Render(u, d); err != nil {
			t.Fatalf("Render: %v", err)
		}
		n := 0
		for _, px := range fb.Pixels {
			if px == p.Wireframe {
				n++
			}
		}
		return n
	}

	if n := count(false); n != 0 {
		t.Errorf("normal view drew %d wireframe pixels", n)
	}
	if n := count(true); n == 0 {
		t.Error("special view drew no wireframe")
	}
}

func TestPipelineNilMesh(t *testing.T) {
	p := NewPipeline(NewFramebuffer(4, 4))
	err := p.Render(game.Uniforms{ViewProj: math3d.Identity()}, []game.Drawable{{Transform: math3d.Identity()}})
	if !errors.Is(err, ErrNilMesh) {
		t.Errorf("err = %v, want ErrNilMesh", err)
	}
}

func TestPipelineResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	p := NewPipeline(fb)
	fb.Resize(8, 6)

	// Render picks up the new size without an explicit Resize.
	if err := p.Render(game.Uniforms{ViewProj: math3d.Identity()}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(p.Rasterizer().zbuffer) != 48 {
		t.Errorf("depth buffer has %d entries, want 48", len(p.Rasterizer().zbuffer))
	}
}
