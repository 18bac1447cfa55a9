// Package models provides the indexed triangle meshes that tunnel segments and
// obstacles are baked into, plus glTF export.
package models

import (
	"fmt"
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
)

// MaxVertices is the largest vertex count addressable by 16-bit indices.
const MaxVertices = math.MaxUint16 + 1

// Mesh is an indexed triangle list with per-vertex attributes.
// Indices are 16-bit, matching the renderer contract.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Indices  []uint16

	// Bounding box (calculated on build)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// NewMesh creates an empty mesh with room for the given vertex and index counts.
func NewMesh(name string, vertexCap, indexCap int) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0, vertexCap),
		Indices:  make([]uint16, 0, indexCap),
	}
}

// AddQuad appends four vertices and the two triangles (0,1,2) and (0,2,3)
// covering them.
func (m *Mesh) AddQuad(v [4]MeshVertex) {
	base := uint16(len(m.Vertices))
	m.Vertices = append(m.Vertices, v[:]...)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

// Validate checks that the index buffer is a triangle list addressing only
// existing vertices.
func (m *Mesh) Validate() error {
	if len(m.Vertices) > MaxVertices {
		return fmt.Errorf("mesh %q: %d vertices exceed 16-bit index range", m.Name, len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("mesh %q: index %d at %d out of range (%d vertices)", m.Name, idx, i, len(m.Vertices))
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// CalculateNormals computes face normals and assigns them to vertices.
// Meshes built from AddQuad do not share vertices between facets, so this
// gives flat shading per facet.
func (m *Mesh) CalculateNormals() {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		v0 := m.Vertices[i0].Position
		v1 := m.Vertices[i1].Position
		v2 := m.Vertices[i2].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		if normal.LenSq() == 0 {
			// Degenerate triangle, keep whatever the other triangle of the quad set
			continue
		}

		m.Vertices[i0].Normal = normal
		m.Vertices[i1].Normal = normal
		m.Vertices[i2].Normal = normal
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		// Normals only take the rotation/scale part; callers use rigid transforms.
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Indices:   make([]uint16, len(m.Indices)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	return clone
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for triangle i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetFace(i int) [3]int {
	return [3]int{
		int(m.Indices[i*3]),
		int(m.Indices[i*3+1]),
		int(m.Indices[i*3+2]),
	}
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer interface.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
