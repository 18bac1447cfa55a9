package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taigrr/tunnelrun/pkg/config"
	"github.com/taigrr/tunnelrun/pkg/game"
	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/models"
	"github.com/taigrr/tunnelrun/pkg/obstacle"
	"github.com/taigrr/tunnelrun/pkg/render"
	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [out.glb]",
		Short: "Write a stretch of tunnel to a glTF binary file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.Int("segments", 4, "number of consecutive segments")
	f.String("png", "", "also render the opening frame to this PNG")
	f.Int("width", 320, "snapshot width in pixels")
	f.Int("height", 180, "snapshot height in pixels")
	f.Int("spin-steps", 0, "number of evenly spaced segment turns")
	f.Bool("no-obstacles", false, "leave out the obstacle")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := "tunnel.glb"
	if len(args) == 1 {
		out = args[0]
	}
	flags := cmd.Flags()
	n, _ := flags.GetInt("segments")
	if n < 1 {
		return fmt.Errorf("--segments must be at least 1, got %d", n)
	}

	meshes := buildTunnel(cfg.GameConfig(), rand.New(rand.NewSource(cfg.RandSeed())), n)
	if err := models.SaveGLB(out, meshes...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d meshes to %s\n", len(meshes), out)

	png, _ := flags.GetString("png")
	if png == "" {
		return nil
	}
	w, _ := flags.GetInt("width")
	h, _ := flags.GetInt("height")
	if w < 1 || h < 1 {
		return fmt.Errorf("snapshot size must be positive, got %dx%d", w, h)
	}
	fb, err := snapshot(cfg, w, h)
	if err != nil {
		return err
	}
	if err := fb.SavePNG(png); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d snapshot to %s\n", w, h, png)
	return nil
}

// buildTunnel lays out n consecutive segments and, with obstacles on, the
// obstacle a run would face at the end of the first one.
func buildTunnel(cfg game.Config, rng *rand.Rand, n int) []*models.Mesh {
	seg := tunnel.NewSegment(math3d.Zero3(), math3d.V3(0, 0, -1), 0, cfg.Segment)

	meshes := make([]*models.Mesh, 0, n+1)
	var second *tunnel.Segment
	for i := range n {
		m := seg.Mesh(rng)
		m.Name = fmt.Sprintf("segment-%d", i)
		meshes = append(meshes, m)

		seg = seg.Next(tunnel.RandomSpin(rng, cfg.SpinSteps))
		if i == 0 {
			second = seg
		}
	}

	if cfg.Obstacles {
		c := obstacle.New(obstacle.KindBar, second.Origin, second.Frame.Axis, rng)
		m := obstacle.Mesh().Clone()
		m.Transform(c.Placement())
		m.Name = "obstacle"
		meshes = append(meshes, m)
	}
	return meshes
}

// snapshot renders the first frame of a fresh run at w×h pixels.
func snapshot(cfg config.Config, w, h int) (*render.Framebuffer, error) {
	g := game.New(cfg.GameConfig(), rand.New(rand.NewSource(cfg.RandSeed())), zerolog.Nop())
	g.Camera().SetFOV(cfg.Display.FOV * math.Pi / 180)
	g.Camera().SetAspectRatio(float64(w) / float64(h))

	fb := render.NewFramebuffer(w, h)
	if err := g.Draw(render.NewPipeline(fb)); err != nil {
		return nil, fmt.Errorf("render snapshot: %w", err)
	}
	return fb, nil
}
