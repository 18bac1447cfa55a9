package obstacle

import (
	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/models"
)

// Mesh sizes of the unit cube.
const (
	VertexCount = 6 * 4
	IndexCount  = 6 * 6
)

var cubeFaces = [6]struct {
	normal  math3d.Vec3
	corners [4]math3d.Vec3 // counter-clockwise seen from outside
}{
	{math3d.V3(0, 0, 1), [4]math3d.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}}},
	{math3d.V3(0, 0, -1), [4]math3d.Vec3{{X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}}},
	{math3d.V3(1, 0, 0), [4]math3d.Vec3{{X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}}},
	{math3d.V3(-1, 0, 0), [4]math3d.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}}},
	{math3d.V3(0, 1, 0), [4]math3d.Vec3{{X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}}},
	{math3d.V3(0, -1, 0), [4]math3d.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}}},
}

var faceUV = [4]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// Mesh returns the unit cube spanning [-1,1] on every axis. Each face has its
// own vertices, normal and full 0..1 texture rectangle.
func Mesh() *models.Mesh {
	m := models.NewMesh("cube", VertexCount, IndexCount)
	for _, f := range cubeFaces {
		var quad [4]models.MeshVertex
		for i, p := range f.corners {
			quad[i] = models.MeshVertex{Position: p, Normal: f.normal, UV: faceUV[i]}
		}
		m.AddQuad(quad)
	}
	m.CalculateBounds()
	return m
}
