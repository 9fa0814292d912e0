package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"vidpir/driver"
	"vidpir/rpc"
)

func main() {
	config := new(driver.Config).AddPirFlags().AddServerFlags().Parse()

	shards, masks, err := config.Stores()
	if err != nil {
		log.Fatalf("Failed to open shard store: %s", err)
	}
	defer shards.Close()
	if err := shards.Watch(); err != nil {
		log.Printf("Catalog watching disabled: %s", err)
	}

	drv, err := driver.NewServerDriver(shards, masks, false)
	if err != nil {
		log.Fatalf("Failed to create server driver: %s", err)
	}

	server, err := rpc.NewServer(config.Port, config.UseTLS)
	if err != nil {
		log.Fatalf("Failed to create server: %s", err)
	}
	if err := server.RegisterName("PirServerDriver", drv); err != nil {
		log.Fatalf("Failed to register server driver: %s", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		server.Close()
	}()

	if err := server.Serve(); err != nil {
		log.Fatalf("Failed to serve: %s", err)
	}
}
