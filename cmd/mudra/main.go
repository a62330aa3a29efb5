package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	addr       = flag.String("addr", ":8080", "HTTP listen address")
	dataDir    = flag.String("data", "", "Data directory (default ~/.mudra)")
	webDir     = flag.String("web", "", "Renderer static files (default: search web/ and ~/.mudra/web)")
	cameraID   = flag.Int("camera", 0, "Camera device index")
	headless   = flag.Bool("headless", false, "Run without the system tray")
	rasterizer = flag.String("rasterizer", config.RasterTrueType, "Glyph rasterizer: truetype or hershey")
	particles  = flag.Int("particles", config.Defaults().Particles, "Number of particles")
	save       = flag.Bool("save", false, "Persist -rasterizer and -particles to the settings store")
)

func main() {
	flag.Parse()
	fmt.Println("Mudra - Hand Gesture Particles")

	dir := *dataDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dir = filepath.Join(homeDir, ".mudra")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dir, "mudra.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if handled, err := runSettings(st, os.Stdout); handled {
		if err != nil {
			log.Fatalf("Settings: %v", err)
		}
		return
	}

	tun, err := loadTunables(st)
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	hub := server.NewHub()
	camCfg := capture.DefaultConfig()
	camCfg.DeviceID = *cameraID

	a, err := app.New(app.Config{
		Tunables:     tun,
		CameraConfig: camCfg,
		Publisher:    hub,
	})
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	web := *webDir
	if web == "" {
		web = findWebDir(dir)
	}
	if web != "" {
		fmt.Printf("Serving static files from: %s\n", web)
	}
	srv := server.New(server.Config{
		StaticDir: web,
		Hub:       hub,
		Status:    a.Status,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(ctx, *addr); err != nil {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if *headless {
		<-ctx.Done()
		log.Println("Shutting down")
		return
	}

	tr := tray.New()
	a.OnGesture(tr.SetGesture)
	a.OnStatus(tr.SetStatus)
	tr.OnToggle(a.SetEnabled)
	tr.OnOpen(func() {
		if err := openBrowser(rendererURL(*addr)); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	tr.OnQuit(stop)

	go func() {
		<-ctx.Done()
		tr.Quit()
	}()
	tr.Run()
	log.Println("Shutting down")
}

// loadTunables starts from the defaults, overlays the stored settings and
// then any explicitly set flags.
func loadTunables(st *store.Store) (config.Tunables, error) {
	tun := config.Defaults()

	stored, err := st.Settings().All()
	if err != nil {
		return tun, fmt.Errorf("load settings: %w", err)
	}
	if err := tun.Apply(stored); err != nil {
		log.Printf("Ignoring stored settings: %v", err)
	}

	overrides := map[string]string{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rasterizer":
			overrides["rasterizer"] = *rasterizer
		case "particles":
			overrides["particles"] = strconv.Itoa(*particles)
		}
	})
	if err := tun.Apply(overrides); err != nil {
		return tun, err
	}

	if *save && len(overrides) > 0 {
		if err := st.Settings().SetAll(overrides); err != nil {
			return tun, fmt.Errorf("save settings: %w", err)
		}
		log.Printf("Saved %d settings to %s", len(overrides), st.Path())
	}
	return tun, nil
}

// findWebDir searches for the renderer directory in common locations.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

func rendererURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
