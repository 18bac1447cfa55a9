package models

import (
	"testing"

	"github.com/taigrr/tunnelrun/pkg/math3d"
)

func TestAddQuad(t *testing.T) {
	m := quadMesh("q")
	m.AddQuad([4]MeshVertex{})

	if m.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8", m.VertexCount())
	}
	if m.IndexCount() != 12 || m.TriangleCount() != 4 {
		t.Errorf("IndexCount = %d, TriangleCount = %d, want 12 and 4", m.IndexCount(), m.TriangleCount())
	}

	want := [3]int{4, 6, 7}
	if got := m.GetFace(3); got != want {
		t.Errorf("GetFace(3) = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	m := quadMesh("q")
	if err := m.Validate(); err != nil {
		t.Errorf("valid mesh: %v", err)
	}

	m.Indices = m.Indices[:5]
	if err := m.Validate(); err == nil {
		t.Error("expected error for partial triangle")
	}
}

func TestCalculateNormalsFlat(t *testing.T) {
	m := quadMesh("q")
	for i, v := range m.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
			t.Errorf("vertex %d normal = %v, want (0, 0, 1)", i, v.Normal)
		}
	}
}

func TestTransformUpdatesBounds(t *testing.T) {
	m := quadMesh("q")
	m.Transform(math3d.Translate(math3d.V3(10, 0, 0)))

	if !m.BoundsMin.ApproxEqual(math3d.V3(10, 0, 0), 1e-12) {
		t.Errorf("BoundsMin = %v", m.BoundsMin)
	}
	if !m.Center().ApproxEqual(math3d.V3(10.5, 0.5, 0), 1e-12) {
		t.Errorf("Center = %v", m.Center())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := quadMesh("q")
	clone := m.Clone()
	clone.Indices[0] = 3
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)

	if m.Indices[0] != 0 {
		t.Error("Clone should have independent index buffer")
	}
	if m.Vertices[0].Position != math3d.Zero3() {
		t.Error("Clone should have independent vertex buffer")
	}
}
