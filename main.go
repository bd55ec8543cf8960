package main

import (
	"flag"
	"fmt"
	"github.com/esplab/esprig/esp01"
	"github.com/esplab/esprig/rig"
	"github.com/esplab/esprig/web"
	"github.com/rkjdid/util"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"
)

var (
	conn       *esp01.SerialConnection
	rootConfig *web.Config
)

var (
	device   = flag.String("dev", "", "path to serial port, if empty it will be searched automatically")
	rootPath = flag.String("root", "", "path to esprig's main directory (defaults to executable path)")
	cfgPath  = flag.String("config", "", "path to config (defaults to <root>/config.toml)")
	verbose  = flag.Bool("v", false, "higher verbosity")
	version  = flag.Bool("version", false, "print version & exit")
)

func init() {
	flag.Parse()

	// print version & exit
	if *version {
		fmt.Printf("esprig %s\n", Version)
		os.Exit(0)
	}

	if *device != "" {
		port, config, err := esp01.OpenPortName(*device)
		if err != nil {
			log.Fatal("error opening serial port: ", err)
		}
		conn = esp01.NewSerial(port, config, *device)
		conn.Start()
	}

	if *rootPath == "" {
		exe, err := os.Executable()
		if err != nil {
			log.Fatalf("couldn't get path to executable: %s", err)
		}
		*rootPath = filepath.Dir(exe)
	}
	err := os.MkdirAll(*rootPath, 0755)
	if err != nil {
		log.Fatalf("couldn't mkdir \"%s\": %s", *rootPath, err)
	}

	if *cfgPath == "" {
		*cfgPath = filepath.Join(*rootPath, "config.toml")
	}

	err = util.ReadTomlFile(&rootConfig, *cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("error reading config \"%s\": %s", *cfgPath, err)
		}
		rootConfig = &web.DefaultConfig
		err = util.WriteTomlFile(rootConfig, *cfgPath)
		if err != nil {
			log.Fatalf("error creating config \"%s\": %s", *cfgPath, err)
		}
		log.Printf("created new config file \"%s\"", *cfgPath)
	}

	if *verbose {
		rootConfig.Web.Verbose = true
	}

	log.Printf("using config file: %s", *cfgPath)
}

func main() {
	err := rig.Init()
	if err != nil {
		log.Fatal("error loading gpio drivers: ", err)
	}
	buttonA, buttonB, indicators, reset, err := rig.Setup(&rootConfig.Rig)
	if err != nil {
		log.Fatal("error opening gpio pins: ", err)
	}

	var link esp01.Link
	if conn != nil {
		link = conn
	}
	esp, err := esp01.New(link, reset, &rootConfig.Esp)
	if err != nil {
		if *device != "" {
			log.Fatalf("no response from esp-01 on port \"%s\": %s", *device, err)
		}
		log.Fatal("error initializing esp-01 connection: ", err)
	}
	log.Printf("connected to esp-01 on \"%s\"", esp.Conn.Path())

	seq := rig.NewSequencer(esp, buttonA, buttonB, indicators, nil)

	log.Printf("starting state tracer (poll rate: %s)", rootConfig.Tracer.PollRate)
	tracer := rig.NewTracer(seq, &rootConfig.Tracer)
	tracer.Record()

	log.Printf("starting webserver on http://%s ...", rootConfig.Web.ListenAddr)
	go web.StartServer(Version, seq, tracer, rootConfig, *cfgPath)

	// small delay to allow for panic in StartServer
	<-time.After(time.Millisecond * 500)
	log.Println("starting in state Idle, press <Ctrl-C> to quit")

	stopSeq := make(chan struct{})
	runErr := make(chan error, 1)
	go func() {
		runErr <- seq.Run(stopSeq, time.Duration(rootConfig.Rig.Tick))
	}()

	trap := make(chan os.Signal, 1)
	signal.Notify(trap, os.Interrupt)

	var exitCode int
	select {
	case err := <-runErr:
		// fail-stop: a failed transition halts the rig
		if err != nil {
			log.Println("sequencer halted:", err)
			exitCode = 1
		}
	case <-trap:
		fmt.Println()
		log.Println("quit received...")
		close(stopSeq)
		<-runErr
	}

	cleanExit := make(chan struct{})
	go func() {
		tracer.Stop()
		if esp.Conn != nil {
			esp.Conn.Close()
		}

		close(cleanExit)
	}()
	select {
	case <-time.After(time.Second * 10):
		log.Panicln("no clean exit after 10sec, please report panic log to https://github.com/esplab/esprig/issues")
	case <-cleanExit:
	}
	os.Exit(exitCode)
}
