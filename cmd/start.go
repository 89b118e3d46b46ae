/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"distributor/domain"
	"distributor/interface/exporter"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var quit = make(chan bool)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the distributor service",
	Long: `Starts the distributor service: loads the pool state from the database,
serves the staking operations over HTTP and schedules the snapshot and
metric refresh tasks.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("start called.")

		exporter.Init()
		defaultDependencyInject()

		if err := poolInteractor.Load(); err != nil {
			log.Fatalf("Unable to load pool state - %v\n", err.Error())
		}

		router := mux.NewRouter()
		poolAPI.Mount(router)
		router.Path("/metrics").Handler(promhttp.Handler())

		server := &http.Server{
			Addr:    domain.GetListenAddress(),
			Handler: handlers.CombinedLoggingHandler(os.Stdout, router),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Unable to serve - %v\n", err.Error())
			}
		}()
		log.Printf("serving on %v\n", domain.GetListenAddress())

		snapshotTicker := schedule(snapshot, domain.GetSnapshotInterval(), quit)
		refreshTicker := schedule(refresh, domain.GetRefreshInterval(), quit)

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Printf("Got signal '%v', stopping", s)

		snapshotTicker.Stop()
		refreshTicker.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		// Leave a final snapshot behind, so a missed write-behind persist
		// cannot outlive the process.
		snapshot()
	},
}

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				task()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

func snapshot() {
	err := poolInteractor.Snapshot()
	if err != nil {
		fmt.Printf("❌ Pool snapshot is not stored due to error: %v\n", err.Error())
		return
	}
}

func refresh() {
	exporter.Refresh(poolInteractor.Status())
}

func init() {
	rootCmd.AddCommand(startCmd)
}
