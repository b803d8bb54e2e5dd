// Command polyctl is a demo CLI over the polygon service: a cobra root
// command with subcommands reading configuration through viper.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/deltapolygon/deltapolygon/config"
	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/polygon"
	"github.com/deltapolygon/deltapolygon/service"
	"github.com/deltapolygon/deltapolygon/telemetry"
)

var (
	configFile string
	svc        *service.Service
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "polyctl",
		Short: "create, update, query, and export temporal polygons",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			svc = service.New(cfg, nil, telemetry.NewNop())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file")
	root.AddCommand(createCmd(), updateCmd(), queryCmd(), exportCmd(), configCmd())
	return root
}

// configCmd: polyctl config init <path>
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage polyctl configuration files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init path",
		Short: "write a default config file to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteDefault(args[0])
		},
	})
	return cmd
}

// createCmd: polyctl create 0:0,0 1:10,0 2:10,10 3:0,10
func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create id:x,y [id:x,y ...]",
		Short: "create a polygon from initial vertex positions",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			initial := make(map[int]point.Point, len(args))
			for _, tok := range args {
				id, p, err := parseVertexToken(tok)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				initial[id] = p
			}
			p, err := svc.CreatePolygon(ids, initial, time.Now(), polygon.Cartesian)
			if err != nil {
				return err
			}
			fmt.Println(p.ID)
			return nil
		},
	}
}

func parseVertexToken(tok string) (int, point.Point, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return 0, point.Point{}, fmt.Errorf("polyctl: malformed vertex token %q", tok)
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, point.Point{}, fmt.Errorf("polyctl: bad vertex id in %q: %w", tok, err)
	}
	coords := strings.SplitN(parts[1], ",", 2)
	if len(coords) != 2 {
		return 0, point.Point{}, fmt.Errorf("polyctl: malformed coordinates in %q", tok)
	}
	x, err := strconv.ParseFloat(coords[0], 64)
	if err != nil {
		return 0, point.Point{}, fmt.Errorf("polyctl: bad x in %q: %w", tok, err)
	}
	y, err := strconv.ParseFloat(coords[1], 64)
	if err != nil {
		return 0, point.Point{}, fmt.Errorf("polyctl: bad y in %q: %w", tok, err)
	}
	return id, point.Point{X: x, Y: y}, nil
}

// updateCmd: polyctl update <pid> <vertexId> <x> <y> [--delta]
func updateCmd() *cobra.Command {
	var useDelta bool
	cmd := &cobra.Command{
		Use:   "update pid vertexId x y",
		Short: "move one vertex of a polygon to a new position",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			vid, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			x, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return err
			}
			y, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return err
			}
			return svc.UpdateVertex(pid, vid, point.Point{X: x, Y: y}, time.Now(), useDelta)
		},
	}
	cmd.Flags().BoolVar(&useDelta, "delta", false, "prefer a Delta state when the move is small")
	return cmd
}

// queryCmd: polyctl query <pid> [--at rfc3339]
func queryCmd() *cobra.Command {
	var atStr string
	cmd := &cobra.Command{
		Use:   "query pid",
		Short: "reconstruct a polygon at an instant (now, if --at is omitted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			t := time.Now()
			if atStr != "" {
				t, err = time.Parse(time.RFC3339Nano, atStr)
				if err != nil {
					return err
				}
			}
			pts, err := svc.GetPolygonAt(pid, t)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(pts)
		},
	}
	cmd.Flags().StringVar(&atStr, "at", "", "RFC3339 instant to reconstruct at")
	return cmd
}

// exportCmd: polyctl export <pid>
func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export pid",
		Short: "print a polygon's persistence document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			data, err := svc.Export(pid)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}
