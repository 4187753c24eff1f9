package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/csdemo/siteview/internal/cache"
	"github.com/csdemo/siteview/internal/config"
	"github.com/csdemo/siteview/internal/logging"
	"github.com/csdemo/siteview/internal/maps"
	"github.com/csdemo/siteview/internal/monitor"
	"github.com/csdemo/siteview/internal/server"
	"github.com/csdemo/siteview/internal/view"
	"github.com/csdemo/siteview/pkg/core"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type need uint8

const (
	needsDataset need = 1 << iota
	needsRenderer
	needsDatabase
)

type command struct {
	name    string
	args    string
	summary string
	needs   need
	flags   *pflag.FlagSet
	run     func(ctx context.Context, a *app, out io.Writer) error
}

type invocation struct {
	cmd *command
}

// parseArgs reads the global flags up to the subcommand, then the
// subcommand's own flags. A nil cmd means usage was requested.
func parseArgs(args []string) (invocation, error) {
	global := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	global.StringP("config", "c", ".", "directory containing "+config.FileName)
	global.String("log-level", "info", "debug, info, warn or error")
	help := global.BoolP("help", "h", false, "show usage")

	if err := global.Parse(args); err != nil {
		return invocation{}, err
	}
	if err := viper.BindPFlag("configDir", global.Lookup("config")); err != nil {
		return invocation{}, err
	}
	if err := viper.BindPFlag("logLevel", global.Lookup("log-level")); err != nil {
		return invocation{}, err
	}
	if *help || global.NArg() == 0 || global.Arg(0) == "help" {
		return invocation{}, nil
	}

	name := global.Arg(0)
	for _, cmd := range commands() {
		if cmd.name != name {
			continue
		}
		cmd.flags.SetOutput(io.Discard)
		if err := cmd.flags.Parse(global.Args()[1:]); err != nil {
			return invocation{}, fmt.Errorf("%s: %w", name, err)
		}
		return invocation{cmd: cmd}, nil
	}
	return invocation{}, fmt.Errorf("unknown command: %s", name)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [--config dir] [--log-level level] <command> [flags]\n\nCommands:\n", AppName)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cmd := range commands() {
		fmt.Fprintf(tw, "  %s %s\t%s\n", cmd.name, cmd.args, cmd.summary)
	}
	_ = tw.Flush()
}

func commands() []*command {
	return []*command{
		serveCommand(),
		roundCommand(),
		heatmapCommand(),
		chartCommand(),
		topCommand(),
		mapsCommand(),
		documentsCommand(),
	}
}

// site resolves a map site, defaulting to the configured one.
func (a *app) site(mapID, siteID string) (*maps.Site, error) {
	mc := config.GetMapsConfig()
	if mapID == "" {
		mapID = mc.DefaultMap
	}
	if siteID == "" {
		siteID = mc.DefaultSite
	}
	return a.registry.Lookup(mapID, siteID)
}

func siteFlags(fs *pflag.FlagSet) (mapID, siteID *string) {
	return fs.String("map", "", "map id, default maps.defaultMap"),
		fs.String("site", "", "site id, default maps.defaultSite")
}

func serveCommand() *command {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("addr", "", "listen address, default server.address")
	return &command{
		name:    "serve",
		summary: "run the HTTP viewer",
		needs:   needsDataset | needsRenderer,
		flags:   fs,
		run: func(ctx context.Context, a *app, _ io.Writer) error {
			if addr := fs.Lookup("addr"); addr.Changed {
				viper.Set("server.address", addr.Value.String())
			}
			sc := config.GetServerConfig()
			sceneCache, err := cache.NewSceneCache(sc.CacheSize)
			if err != nil {
				return err
			}

			deps := monitor.Dependencies{
				Snapshot:   a.snapshot,
				Cache:      sceneCache,
				Logger:     a.logger,
				StatusPath: filepath.Join(viper.GetString("logsDir"), "status.json"),
				Interval:   sc.StatusInterval,
			}
			if a.influx != nil {
				deps.Points = a.influx
			}
			status := monitor.NewService(deps)

			srv, err := server.New(server.Deps{
				Config:   sc,
				Maps:     config.GetMapsConfig(),
				TopN:     config.GetRenderConfig().TopPositions,
				Snapshot: a.snapshot,
				Registry: a.registry,
				Renderer: a.renderer,
				Cache:    sceneCache,
				Logger:   a.logger,
				Access:   logging.NewKVLogger(a.zlog.With().Str("component", "http").Logger()),
				Status:   status,
			})
			if err != nil {
				return err
			}

			if err := status.Start(); err != nil {
				return err
			}
			defer status.Stop()

			return srv.Run(ctx)
		},
	}
}

func roundCommand() *command {
	fs := pflag.NewFlagSet("round", pflag.ContinueOnError)
	mapID, siteID := siteFlags(fs)
	buy := fs.String("buy-type", string(core.BuyAll), "all, pistol, eco, light_buy or full_buy")
	player := fs.String("player", "", "highlight one player")
	asJSON := fs.Bool("json", false, "print the view model instead of SVG")
	return &command{
		name:    "round",
		args:    "<n>",
		summary: "render one round as SVG",
		needs:   needsDataset | needsRenderer,
		flags:   fs,
		run: func(_ context.Context, a *app, out io.Writer) error {
			if fs.NArg() != 1 {
				return errors.New("round needs a round number")
			}
			n, err := strconv.Atoi(fs.Arg(0))
			if err != nil || n < 1 {
				return fmt.Errorf("invalid round %q", fs.Arg(0))
			}
			bt, err := core.ParseBuyType(*buy)
			if err != nil {
				return err
			}
			site, err := a.site(*mapID, *siteID)
			if err != nil {
				return err
			}
			ds, err := a.snapshot.Dataset()
			if err != nil {
				return err
			}

			st := view.NewState(site.MapID, site.ID).WithBuyType(bt).WithPlayer(*player)
			st.Round = n
			if !*asJSON {
				return a.renderer.WriteRound(out, ds, site, st)
			}
			res, err := a.renderer.Round(ds, site, st)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func heatmapCommand() *command {
	fs := pflag.NewFlagSet("heatmap", pflag.ContinueOnError)
	mapID, siteID := siteFlags(fs)
	return &command{
		name:    "heatmap",
		summary: "render the area heatmap as SVG",
		needs:   needsDataset | needsRenderer,
		flags:   fs,
		run: func(_ context.Context, a *app, out io.Writer) error {
			site, err := a.site(*mapID, *siteID)
			if err != nil {
				return err
			}
			ds, err := a.snapshot.Dataset()
			if err != nil {
				return err
			}
			return a.renderer.WriteHeatmap(out, ds, site)
		},
	}
}

func chartCommand() *command {
	fs := pflag.NewFlagSet("chart", pflag.ContinueOnError)
	top := fs.Int("top", 0, "number of areas, default render.topPositions")
	return &command{
		name:    "chart",
		summary: "render the position frequency chart as SVG",
		needs:   needsDataset | needsRenderer,
		flags:   fs,
		run: func(_ context.Context, a *app, out io.Writer) error {
			ds, err := a.snapshot.Dataset()
			if err != nil {
				return err
			}
			n := *top
			if n <= 0 {
				n = config.GetRenderConfig().TopPositions
			}
			return a.renderer.WriteChart(out, ds, n)
		},
	}
}

func topCommand() *command {
	fs := pflag.NewFlagSet("top", pflag.ContinueOnError)
	top := fs.Int("top", 0, "number of areas, default render.topPositions")
	return &command{
		name:    "top",
		summary: "print the most held positions",
		needs:   needsDataset,
		flags:   fs,
		run: func(_ context.Context, a *app, out io.Writer) error {
			ds, err := a.snapshot.Dataset()
			if err != nil {
				return err
			}
			n := *top
			if n <= 0 {
				n = config.GetRenderConfig().TopPositions
			}
			return writeTop(out, view.TopPositions(ds.Aggregate.PositionStats, n))
		},
	}
}

func writeTop(out io.Writer, top view.TopN) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AREA\tFREQUENCY\tOCCURRENCES\tTOP BUY\tTOP ENTRY")
	for _, stat := range top.Stats {
		in := view.Insight(stat)
		buy, entry := "-", "-"
		if in.TopBuyType != "" {
			buy = fmt.Sprintf("%s (%d)", in.TopBuyType.Label(), in.BuyTypeCount)
		}
		if in.TopEntry != "" {
			entry = fmt.Sprintf("%s (%d)", in.TopEntry, in.EntryCount)
		}
		fmt.Fprintf(tw, "%s\t%.1f%%\t%d\t%s\t%s\n",
			stat.Area, stat.OverallFrequency*100, stat.TotalOccurrences, buy, entry)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if top.Remaining > 0 {
		_, err := fmt.Fprintf(out, "... and %d more\n", top.Remaining)
		return err
	}
	return nil
}

func mapsCommand() *command {
	return &command{
		name:    "maps",
		summary: "list the configured maps and sites",
		flags:   pflag.NewFlagSet("maps", pflag.ContinueOnError),
		run: func(_ context.Context, a *app, out io.Writer) error {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MAP\tSITE\tLABEL\tENABLED\tBACKGROUND")
			for _, m := range a.registry.Maps() {
				ids := make([]string, 0, len(m.Sites))
				for id := range m.Sites {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					s := m.Sites[id]
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", m.ID, id, s.Label, s.Enabled, s.Background)
				}
			}
			return tw.Flush()
		},
	}
}

func documentsCommand() *command {
	return &command{
		name:    "documents",
		summary: "list dataset documents in the database",
		needs:   needsDatabase,
		flags:   pflag.NewFlagSet("documents", pflag.ContinueOnError),
		run: func(ctx context.Context, a *app, out io.Writer) error {
			docs, err := a.db.ListDocuments(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDEMO\tMAP\tCREATED")
			for _, d := range docs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.ID, d.DemoFile, d.Map, d.CreatedAt.UTC().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}
