// Package render is a software rasterizer that draws the tunnel into a
// framebuffer for half-block terminal output.
package render

import (
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Shading holds what a triangle is coloured with.
type Shading struct {
	Texture *Texture    // nil draws white
	Light   math3d.Vec3 // unit direction toward the light
	Eye     math3d.Vec3 // for fog distance
	Tint    float64     // multiplies the lit colour
	Invert  bool
}

// Lighting constants. The camera carries a headlight, so both sides of a
// facet are lit the same.
const (
	ambient = 0.35
	diffuse = 0.65
)

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	fb           *Framebuffer
	zbuffer      []float64 // Depth buffer (1D array, row-major)
	viewProj     math3d.Mat4
	frustum      Frustum
	CullingStats CullingStats // Statistics for debugging/benchmarking

	// BackfaceCulling drops triangles wound clockwise on screen. The tunnel
	// is seen from inside, so it is off by default.
	BackfaceCulling bool

	// Linear fog toward black between FogStart and FogEnd world units from
	// the eye. FogEnd <= FogStart disables it.
	FogStart, FogEnd float64

	clipIn, clipOut []clipVertex
}

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not rendered)
	MeshesDrawn  int // Meshes that passed culling
}

// NewRasterizer creates a new rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		fb:       fb,
		viewProj: math3d.Identity(),
		FogStart: 30,
		FogEnd:   130,
	}
	r.frustum = NewFrustumFromMatrix(r.viewProj)
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// SetViewProjection sets the world to clip space transform for the frame.
func (r *Rasterizer) SetViewProjection(m math3d.Mat4) {
	r.viewProj = m
	r.frustum = NewFrustumFromMatrix(m)
}

// Frustum returns the view frustum of the current view-projection.
func (r *Rasterizer) Frustum() Frustum {
	return r.frustum
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests if a world-space AABB is visible in the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.frustum.IntersectAABB(worldBounds)
}

// depthAt returns the depth at (x, y).
func (r *Rasterizer) depthAt(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// clipVertex is a vertex in clip space with the attributes that get
// interpolated across the triangle.
type clipVertex struct {
	Pos   math3d.Vec4
	UV    math3d.Vec2
	Light float64
}

func (a clipVertex) lerp(b clipVertex, t float64) clipVertex {
	return clipVertex{
		Pos:   a.Pos.Lerp(b.Pos, t),
		UV:    a.UV.Lerp(b.UV, t),
		Light: a.Light + (b.Light-a.Light)*t,
	}
}

// nearDistance is positive on the visible side of the near plane.
func (a clipVertex) nearDistance() float64 {
	return a.Pos.Z + a.Pos.W
}

// shadeVertex computes the clip position and light intensity of v.
func (r *Rasterizer) shadeVertex(v Vertex, sh Shading) clipVertex {
	light := ambient + diffuse*math.Abs(v.Normal.Dot(sh.Light))
	if r.FogEnd > r.FogStart {
		d := v.Position.Distance(sh.Eye)
		fog := math3d.Clamp((d-r.FogStart)/(r.FogEnd-r.FogStart), 0, 1)
		light *= 1 - fog
	}
	return clipVertex{
		Pos:   r.viewProj.MulVec4(math3d.V4FromV3(v.Position, 1)),
		UV:    v.UV,
		Light: light,
	}
}

// clipNear clips a convex polygon against the near plane
// (Sutherland-Hodgman). The result is written to out.
func clipNear(in, out []clipVertex) []clipVertex {
	out = out[:0]
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da, db := a.nearDistance(), b.nearDistance()

		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, a.lerp(b, da/(da-db)))
		}
	}
	return out
}

// DrawTriangle clips, projects and fills one triangle.
func (r *Rasterizer) DrawTriangle(tri Triangle, sh Shading) {
	in := r.clipIn[:0]
	for i := range 3 {
		in = append(in, r.shadeVertex(tri.V[i], sh))
	}
	r.clipIn = in

	poly := clipNear(in, r.clipOut)
	r.clipOut = poly

	// Fan-triangulate what survived clipping
	for i := 1; i+1 < len(poly); i++ {
		r.fill(poly[0], poly[i], poly[i+1], sh)
	}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // Screen coordinates
	Z     float64 // Depth (for Z-buffer)
	InvW  float64 // 1/W (for perspective-correct interpolation)
	UV    math3d.Vec2
	Light float64
}

func (r *Rasterizer) toScreen(c clipVertex) screenVertex {
	invW := 1.0 / c.Pos.W
	return screenVertex{
		X:     (c.Pos.X*invW + 1) * 0.5 * float64(r.Width()),
		Y:     (1 - c.Pos.Y*invW) * 0.5 * float64(r.Height()), // Y flipped
		Z:     c.Pos.Z * invW,
		InvW:  invW,
		UV:    c.UV,
		Light: c.Light,
	}
}

// edgeCoeffs returns A, B, C for the edge function
// edge(x,y) = A*x + B*y + C, positive to the left of x0,y0 -> x1,y1.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// fill rasterizes a triangle that lies entirely in front of the near plane,
// using edge functions with incremental updates.
func (r *Rasterizer) fill(c0, c1, c2 clipVertex, sh Shading) {
	sv := [3]screenVertex{r.toScreen(c0), r.toScreen(c1), r.toScreen(c2)}

	area2 := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area2 == 0 || math.IsNaN(area2) {
		return
	}
	// Screen Y points down, so a triangle wound counter-clockwise in view
	// has negative area here.
	if area2 > 0 && r.BackfaceCulling {
		return
	}
	if area2 < 0 {
		sv[1], sv[2] = sv[2], sv[1]
		area2 = -area2
	}
	invArea := 1.0 / area2

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	tint := sh.Tint
	if tint == 0 {
		tint = 1
	}
	width := r.Width()

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea

				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z
				idx := rowOffset + x
				if z < r.zbuffer[idx] {
					// Perspective-correct attributes
					p0, p1, p2 := bc0*sv[0].InvW, bc1*sv[1].InvW, bc2*sv[2].InvW
					oneOverW := p0 + p1 + p2
					u := (p0*sv[0].UV.X + p1*sv[1].UV.X + p2*sv[2].UV.X) / oneOverW
					v := (p0*sv[0].UV.Y + p1*sv[1].UV.Y + p2*sv[2].UV.Y) / oneOverW
					light := (p0*sv[0].Light + p1*sv[1].Light + p2*sv[2].Light) / oneOverW

					c := ColorWhite
					if sh.Texture != nil {
						c = sh.Texture.Sample(u, v)
					}
					c = MultiplyColor(c, light*tint)
					if sh.Invert {
						c = InvertColor(c)
					}

					r.zbuffer[idx] = z
					r.fb.SetPixel(x, y, c)
				}
			}

			// Step in X direction
			w0 += A0
			w1 += A1
			w2 += A2
		}

		// Step in Y direction
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// MeshRenderer is the read side of a triangle mesh.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// tryFrustumCull attempts to cull a mesh using its bounds if available.
// Returns true if the mesh should be culled (not visible).
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++

	minBounds, maxBounds := bounded.GetBounds()
	worldBounds := AABB{Min: minBounds, Max: maxBounds}.Transform(transform)
	if !r.IsVisible(worldBounds) {
		r.CullingStats.MeshesCulled++
		return true
	}

	r.CullingStats.MeshesDrawn++
	return false
}

// DrawMesh renders a mesh with the given transform and shading.
// Automatically performs frustum culling if the mesh provides bounds.
// It reports whether the mesh was drawn.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, sh Shading) bool {
	if r.tryFrustumCull(mesh, transform) {
		return false
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		var tri Triangle
		for k := range 3 {
			p, n, uv := mesh.GetVertex(face[k])
			tri.V[k] = Vertex{
				Position: transform.MulVec3(p),
				Normal:   transform.MulVec3Dir(n).Normalize(),
				UV:       uv,
			}
		}
		r.DrawTriangle(tri, sh)
	}
	return true
}

// DrawMeshWireframe renders a mesh's triangle edges over the frame, ignoring
// depth.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		r.drawLine3D(v0, v1, color)
		r.drawLine3D(v1, v2, color)
		r.drawLine3D(v2, v0, color)
	}
}

// drawLine3D draws a world-space line, clipped to the near plane.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	ca := clipVertex{Pos: r.viewProj.MulVec4(math3d.V4FromV3(a, 1))}
	cb := clipVertex{Pos: r.viewProj.MulVec4(math3d.V4FromV3(b, 1))}

	da, db := ca.nearDistance(), cb.nearDistance()
	switch {
	case da < 0 && db < 0:
		return
	case da < 0:
		ca = ca.lerp(cb, da/(da-db))
	case db < 0:
		cb = cb.lerp(ca, db/(db-da))
	}

	sa, sb := r.toScreen(ca), r.toScreen(cb)
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}
