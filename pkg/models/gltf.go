package models

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// NewDocument packs meshes into a glTF document, one node per mesh, all in
// the default scene. Positions, normals and texture coordinates are written
// as float32 accessors and indices as unsigned shorts.
func NewDocument(meshes ...*Mesh) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			return nil, err
		}

		positions := make([][3]float32, len(m.Vertices))
		normals := make([][3]float32, len(m.Vertices))
		uvs := make([][2]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
			normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
			// glTF puts V=0 at the top of the image
			uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
		}

		posIdx := modeler.WritePosition(doc, positions)
		normIdx := modeler.WriteNormal(doc, normals)
		uvIdx := modeler.WriteTextureCoord(doc, uvs)
		indIdx := modeler.WriteIndices(doc, m.Indices)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: m.Name,
			Primitives: []*gltf.Primitive{{
				Mode:    gltf.PrimitiveTriangles,
				Indices: gltf.Index(indIdx),
				Attributes: map[string]int{
					gltf.POSITION:   posIdx,
					gltf.NORMAL:     normIdx,
					gltf.TEXCOORD_0: uvIdx,
				},
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: m.Name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	return doc, nil
}

// SaveGLB writes meshes to path as a binary glTF file.
func SaveGLB(path string, meshes ...*Mesh) error {
	doc, err := NewDocument(meshes...)
	if err != nil {
		return fmt.Errorf("build gltf: %w", err)
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}
