package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/tunnelrun/pkg/game"
	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

// ErrNilMesh is returned when a drawable has no mesh.
var ErrNilMesh = errors.New("render: drawable has no mesh")

// Pipeline draws game frames into a framebuffer. It implements
// game.Renderer.
type Pipeline struct {
	rast *Rasterizer

	// Textures per material. Nil textures draw untextured.
	Atlas *Texture
	Crate *Texture

	Background Color
	Wireframe  Color // obstacle overlay in the special view
}

// NewPipeline creates a pipeline over fb with the built-in textures.
func NewPipeline(fb *Framebuffer) *Pipeline {
	return &Pipeline{
		rast:       NewRasterizer(fb),
		Atlas:      NewAtlasTexture(tunnel.AtlasTiles, 16, 200),
		Crate:      NewCrateTexture(16, 20),
		Background: ColorBlack,
		Wireframe:  ColorCyan,
	}
}

// Rasterizer returns the underlying rasterizer.
func (p *Pipeline) Rasterizer() *Rasterizer { return p.rast }

// Resize follows a framebuffer size change.
func (p *Pipeline) Resize() { p.rast.Resize() }

// Render clears the frame and draws every drawable.
func (p *Pipeline) Render(u game.Uniforms, drawables []game.Drawable) error {
	r := p.rast
	if len(r.zbuffer) != r.Width()*r.Height() {
		r.Resize()
	}

	bg := p.Background
	if u.Special {
		bg = InvertColor(bg)
	}
	r.fb.Clear(bg)
	r.ClearDepth()
	r.ResetCullingStats()
	r.SetViewProjection(u.ViewProj)

	sh := Shading{
		Light:  u.Forward.Negate(),
		Eye:    u.Eye,
		Tint:   u.Flash,
		Invert: u.Special,
	}

	for i, d := range drawables {
		if d.Mesh == nil {
			return fmt.Errorf("drawable %d: %w", i, ErrNilMesh)
		}
		sh.Texture = p.texture(d.Material)
		drawn := r.DrawMesh(d.Mesh, d.Transform, sh)

		if drawn && u.Special && d.Material == game.MaterialObstacle {
			r.DrawMeshWireframe(d.Mesh, d.Transform, p.Wireframe)
		}
	}
	return nil
}

func (p *Pipeline) texture(m game.Material) *Texture {
	switch m {
	case game.MaterialObstacle:
		return p.Crate
	default:
		return p.Atlas
	}
}
