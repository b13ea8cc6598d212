package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hartland/gridflow/internal/pkg/comm/modbuscomm"
	"github.com/hartland/gridflow/internal/pkg/database/mongodb"
	"github.com/hartland/gridflow/internal/pkg/datastreams/natshandler"
	"github.com/hartland/gridflow/internal/pkg/datastreams/sqldb"
	"github.com/hartland/gridflow/internal/pkg/grid"
	"github.com/hartland/gridflow/internal/pkg/webservice"
)

func main() {
	log.Println("[Main] Starting GridFlow v0.1.0")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	log.Println("[Main] Building System")
	system := buildSystem()

	log.Println("[Main] Linking Handlers")
	stopHandlers := linkHandlers(system)

	log.Println("[Main] Starting Tick Loop")
	go system.Process()

	<-sigs

	log.Println("[Main] Stopping System")
	system.Stop()
	stopHandlers()
}

func buildSystem() *grid.System {
	system, err := grid.New("./config/grid/system.json")
	if err != nil {
		panic(err)
	}
	return system
}

// linkHandlers starts the optional handlers whose config files exist and
// returns a function stopping the ones that were started.
func linkHandlers(system *grid.System) func() {
	stops := make([]func(), 0)

	if path := "./config/webservice/webservice.json"; configExists(path) {
		server, err := webservice.New(path, system)
		if err != nil {
			panic(err)
		}
		go server.Process()
	}

	if path := "./config/datastreams/nats.json"; configExists(path) {
		handler, err := natshandler.New(path, system)
		if err != nil {
			panic(err)
		}
		go handler.Process()
		stops = append(stops, handler.Stop)
	}

	if path := "./config/datastreams/sqldb.json"; configExists(path) {
		handler, err := sqldb.New(path, system)
		if err != nil {
			panic(err)
		}
		go handler.Process()
		stops = append(stops, handler.Stop)
	}

	if path := "./config/database/mongodb.json"; configExists(path) {
		handler, err := mongodb.New(path, system)
		if err != nil {
			panic(err)
		}
		go handler.Process()
		stops = append(stops, handler.StopProcess)
	}

	if path := "./config/comm/demandpoller.json"; configExists(path) {
		poller, err := modbuscomm.New(path, system)
		if err != nil {
			panic(err)
		}
		go poller.Process()
		stops = append(stops, poller.Stop)
	}

	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func configExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
