package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	fhttp "github.com/Noooste/fhttp"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/library"
	"github.com/sagan/erolauncher/scraper"
	"github.com/sagan/erolauncher/tunnel"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/version"
)

type ApiFunc func(ctx context.Context, params url.Values) (data any, err error)

// Response is the envelope of every api endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var (
	lib        *library.Library
	factory    *scraper.Factory
	controller *tunnel.Controller
)

var ApiFuncs = map[string]ApiFunc{
	"basic":   Basic,
	"games":   Games,
	"game":    Game,
	"search":  Search,
	"fetch":   Fetch,
	"launch":  Launch,
	"vpn":     Vpn,
	"cookies": Cookies,
}

var apiHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodOptions && r.Method != http.MethodPost {
		w.WriteHeader(400)
		return
	}
	r.ParseForm()
	w.Header().Add("Content-Type", "application/json")
	cors(w) // for now

	funcName := ""
	if strings.HasPrefix(r.URL.Path, "/api/") {
		funcName = r.URL.Path[5:]
	} else {
		funcName = r.Form.Get("func")
	}
	if config.Data.Token != "" && r.Form.Get("token") != config.Data.Token {
		w.WriteHeader(403)
		util.PrintJson(w, &Response{Message: "invalid token"})
	} else if apiFunc := ApiFuncs[funcName]; apiFunc == nil {
		w.WriteHeader(404)
		util.PrintJson(w, &Response{Message: fmt.Sprintf("unknown endpoint %q", funcName)})
	} else if data, err := apiFunc(r.Context(), r.Form); err != nil {
		w.WriteHeader(500)
		util.PrintJson(w, &Response{Message: err.Error()})
	} else {
		util.PrintJson(w, &Response{Success: true, Message: "ok", Data: data})
	}
})

// Start blocks serving the json api at the configured port.
func Start(webLibrary *library.Library, scraperFactory *scraper.Factory, vpnController *tunnel.Controller) error {
	lib = webLibrary
	factory = scraperFactory
	controller = vpnController
	log.Warnf("Start http server at %d port", config.Data.Port)
	if config.Data.Token != "" {
		log.Warnf(`Token is enabled, use http://0.0.0.0:%d/api/basic?token=%s to access`,
			config.Data.Port, config.Data.Token)
	}
	return http.ListenAndServe(fmt.Sprintf(":%d", config.Data.Port), Handler())
}

// Handler returns the http handler of the api.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/api", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		var endpoints []string
		for name := range ApiFuncs {
			endpoints = append(endpoints, name)
		}
		util.PrintJson(w, &Response{Success: true, Message: "erolauncher api", Data: endpoints})
	}))
	return mux
}

func Basic(ctx context.Context, params url.Values) (any, error) {
	entries, err := lib.List()
	if err != nil {
		return nil, err
	}
	vpnState := string(tunnel.StateDisconnected)
	if controller != nil {
		vpnState = string(controller.State())
	}
	return map[string]any{
		"version":  version.Version,
		"scrapers": scraper.Names(),
		"library":  lib.Root(),
		"games":    len(entries),
		"vpn":      vpnState,
	}, nil
}

func Games(ctx context.Context, params url.Values) (any, error) {
	return lib.List()
}

// Game returns the index entry and the full record of one game. The "id"
// param accepts a game id, work number or dir.
func Game(ctx context.Context, params url.Values) (any, error) {
	entry, err := lib.Get(params.Get("id"))
	if err != nil {
		return nil, err
	}
	game, err := lib.Load(entry.Dir)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"entry": entry,
		"game":  game,
	}, nil
}

func Search(ctx context.Context, params url.Values) (any, error) {
	return lib.Search(params.Get("query"))
}

func Fetch(ctx context.Context, params url.Values) (any, error) {
	input := params.Get("id")
	if input == "" {
		return nil, fmt.Errorf("id param is required")
	}
	maxSamples := util.ParseInt(params.Get("max_samples"), config.Data.MaxSamples)
	return lib.FetchOne(ctx, factory, input, &library.FetchOptions{
		Scrapers:   util.SplitCsv(params.Get("scrapers")),
		Locale:     util.FirstNonZeroArg(params.Get("locale"), config.Data.Locale),
		MaxSamples: maxSamples,
		NoImages:   params.Get("no_images") == "1",
		Force:      params.Get("force") == "1",
		Rename:     params.Get("rename") == "1",
	})
}

func Launch(ctx context.Context, params url.Values) (any, error) {
	entry, err := lib.Get(params.Get("id"))
	if err != nil {
		return nil, err
	}
	if err = lib.Launch(entry, config.Data.LaunchCommand); err != nil {
		return nil, err
	}
	return entry, nil
}

// Vpn controls the tunnel. The "action" param is status (default), connect
// or disconnect.
func Vpn(ctx context.Context, params url.Values) (any, error) {
	if controller == nil {
		return nil, fmt.Errorf("vpn is not configured")
	}
	switch action := params.Get("action"); action {
	case "", "status":
		return controller.Status(), nil
	case "connect":
		if err := controller.Connect(ctx); err != nil {
			return nil, err
		}
		return controller.Status(), nil
	case "disconnect":
		if err := controller.Disconnect(); err != nil {
			return nil, err
		}
		return controller.Status(), nil
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

// Cookies imports site cookies (a json array of name / value / domain / path
// objects) into the config file.
func Cookies(ctx context.Context, params url.Values) (any, error) {
	var cookies []*fhttp.Cookie
	if err := json.Unmarshal([]byte(params.Get("cookies")), &cookies); err != nil {
		return nil, fmt.Errorf("invalid cookies: %w", err)
	}
	if err := config.UpdateCookies(params.Get("useragent"), cookies); err != nil {
		return nil, err
	}
	return len(cookies), nil
}

func cors(w http.ResponseWriter) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	w.Header().Add("Access-Control-Allow-Credentials", "true")
	w.Header().Add("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
	w.Header().Add("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
}
