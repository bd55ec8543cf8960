package web

import (
	"encoding/json"
	"fmt"
	"github.com/esplab/esprig/rig"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rkjdid/util"
	"log"
	"net/http"
	"time"

	_ "net/http/pprof"
)

type ServerConfig struct {
	ListenAddr        string
	Verbose           bool
	WebsocketInterval util.Duration

	version string
}

var DefaultServerConfig = ServerConfig{
	ListenAddr:        "localhost:3637",
	WebsocketInterval: util.Duration(time.Second),
}

// Server is the read-only monitoring frontend of the rig. It only reads
// snapshots published by the sequencer, never the coprocessor handle.
type Server struct {
	Config *Config
	Seq    *rig.Sequencer
	Tracer *rig.Tracer

	cfgPath    string
	router     *mux.Router
	wsUpgrader *websocket.Upgrader
}

// StartServer starts a new http.Server using provided version, Sequencer,
// Tracer & Config. It either doesn't return or panics (http.Listen)
func StartServer(version string, seq *rig.Sequencer, tracer *rig.Tracer, cfg *Config, cfgPath string) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	cfg.Web.version = version
	srv := &Server{
		Config:  cfg,
		Seq:     seq,
		Tracer:  tracer,
		cfgPath: cfgPath,
	}
	srv.wsUpgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	verbose := srv.Config.Web.Verbose
	srv.router = mux.NewRouter()

	// pprof handlers
	srv.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	// shh
	srv.router.Handle("/favicon.ico", http.HandlerFunc(NilHandler))

	// register endpoints
	srv.router.Handle("/websocket",
		Logger(http.HandlerFunc(srv.Websocket), "ws-snapshot", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/config",
		Logger(http.HandlerFunc(srv.ConfigHandler), "config", verbose)).
		Methods("GET", "POST", "HEAD")
	srv.router.Handle("/snapshot",
		Logger(http.HandlerFunc(srv.Snapshot), "snapshot", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/trace",
		Logger(http.HandlerFunc(srv.Trace), "trace", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/",
		Logger(http.HandlerFunc(srv.Home), "web", verbose)).
		Methods("GET", "HEAD")

	// http root handle on gorilla router
	httpServer := &http.Server{
		Handler:      srv.router,
		Addr:         srv.Config.Web.ListenAddr,
		WriteTimeout: 4 * time.Second,
		ReadTimeout:  4 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal("http.ListenAndServer:", err)
	}
}

// Websocket pushes rig snapshots to the subscriber at the configured
// interval (override with ?poll=duration).
func (s *Server) Websocket(w http.ResponseWriter, r *http.Request) {
	var interval = time.Duration(s.Config.Web.WebsocketInterval)
	if v, ok := r.URL.Query()["poll"]; ok {
		if d, err := time.ParseDuration(v[0]); err == nil {
			interval = d
		}
	}
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("error subscribing to websocket:", err)
		http.Error(w, "error subscribing to websocket", 500)
		return
	}

	if s.Config.Web.Verbose {
		log.Printf("websocket - subscription from %s (pollrate: %s)", conn.RemoteAddr(), interval)
	}

	go func(conn *websocket.Conn, s *Server) {
		var err error
		for {
			err = conn.WriteJSON(s.Seq.Snapshot())
			if err != nil {
				if s.Config.Web.Verbose {
					log.Printf("websocket - lost connection to %s", conn.RemoteAddr())
				}
				conn.Close()
				return
			}
			<-time.After(interval)
		}
	}(conn, s)
}

// ConfigHandler POST: persists provided config to the toml file,
// pins and secrets take effect on next start.
// GET: gets current config.
func (s *Server) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		// copy current config, this allows for setting only a subset of the whole config
		var cfg Config = *s.Config
		err := json.NewDecoder(r.Body).Decode(&cfg)
		if err != nil {
			log.Println("error decoding json:", err)
			http.Error(w, "couldn't decode provided json", http.StatusUnprocessableEntity)
			return
		}
		cfg.Web.version = s.Config.Web.version
		*s.Config = cfg

		// save newly set config
		err = util.WriteTomlFile(s.Config, s.cfgPath)
		if err != nil {
			log.Println("error writing config:", err)
			http.Error(w, "error writing config", http.StatusInternalServerError)
			return
		}
		break
	case http.MethodGet:
		break
	default:
		http.Error(w, fmt.Sprintf("unexpected http-method (%s)", r.Method), http.StatusMethodNotAllowed)
		return
	}

	// encode config regardless of http method
	w.WriteHeader(200)
	_ = json.NewEncoder(w).Encode(s.Config)
	return
}

// Snapshot encodes current snapshot as json to w.
func (s *Server) Snapshot(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.Seq.Snapshot())
}

// Trace encodes the recorded state series as json to w.
func (s *Server) Trace(w http.ResponseWriter, r *http.Request) {
	if s.Tracer == nil {
		http.Error(w, "tracer is not running", http.StatusServiceUnavailable)
		return
	}
	_ = json.NewEncoder(w).Encode(s.Tracer.Trace())
}

// Home serves a plain text status line.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	sn := s.Seq.Snapshot()
	fmt.Fprintf(w, "esprig %s - state: %s - link: %s - %s\n",
		s.Config.Web.version, sn.PowerState, sn.LinkState, sn.Time.Format(time.RFC3339))
}
