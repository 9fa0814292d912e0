package driver

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"vidpir/pir"
	"vidpir/store"
)

// Config collects the command-line surface shared by the CLI binaries.
// Flag groups are added with the chained Add*Flags methods, then Parse.
type Config struct {
	// Shard catalog
	Dir0 string
	Dir1 string

	// Work directory for mask files and retrieved artifacts
	WorkDir string

	Mode       pir.Mode
	MaskBudget int

	MeasureBandwidth bool
	CpuProfile       string

	// For client
	ServerAddr    string
	UseTLS        bool
	UsePersistent bool

	// For server
	Port int

	modeStr string

	FlagSet *flag.FlagSet
}

func (c *Config) AddPirFlags() *Config {
	c.FlagSet = flag.CommandLine
	c.FlagSet.StringVar(&c.Dir0, "d0", "D0", "Directory holding shard-0 bit files")
	c.FlagSet.StringVar(&c.Dir1, "d1", "D1", "Directory holding shard-1 bit files")
	c.FlagSet.StringVar(&c.WorkDir, "workdir", ".", "Directory for mask files and retrieved artifacts")
	c.FlagSet.StringVar(&c.modeStr, "mode", pir.MaskedAND.String(),
		fmt.Sprintf("Answer mode: [%s]", strings.Join(pir.ModeStrings(), "|")))
	c.FlagSet.IntVar(&c.MaskBudget, "maskBudget", 0, "Max mask bits buffered in memory (0 = unlimited)")
	c.FlagSet.StringVar(&c.CpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	return c
}

func (c *Config) AddClientFlags() *Config {
	c.FlagSet.StringVar(&c.ServerAddr, "serverAddr", "", "<HOSTNAME>:<PORT> of a remote server role")
	c.FlagSet.BoolVar(&c.UseTLS, "tls", true, "Should use TLS")
	c.FlagSet.BoolVar(&c.UsePersistent, "persistent", false, "Should use persistent connection to server")
	return c
}

func (c *Config) AddServerFlags() *Config {
	c.FlagSet.BoolVar(&c.UseTLS, "tls", true, "Should use TLS")
	c.FlagSet.IntVar(&c.Port, "p", 12345, "Listening port")
	return c
}

func (c *Config) Parse() *Config {
	if c.FlagSet.Parsed() {
		return c
	}
	if err := c.FlagSet.Parse(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
	var err error
	c.Mode, err = pir.ModeString(c.modeStr)
	if err != nil {
		log.Fatalf("Bad answer mode: %s\n", c.modeStr)
	}
	return c
}

// Stores opens the shard catalog and the run-scoped mask store.
func (c *Config) Stores() (*store.ShardStore, *store.MaskStore, error) {
	shards, err := store.Open(c.Dir0, c.Dir1)
	if err != nil {
		return nil, nil, err
	}
	masks := store.NewMaskStore(c.WorkDir)
	masks.Budget = c.MaskBudget
	return shards, masks, nil
}

// ServerDriver returns the server role: an RPC proxy when serverAddr is
// set, an in-process driver over the local stores otherwise.
func (c *Config) ServerDriver() (PirServerDriver, error) {
	c.Parse()

	if c.ServerAddr != "" {
		return NewRpcProxy(c.ServerAddr, c.UseTLS, c.UsePersistent)
	}
	shards, masks, err := c.Stores()
	if err != nil {
		return nil, err
	}
	return NewServerDriver(shards, masks, c.MeasureBandwidth)
}

func (c *Config) String() string {
	return fmt.Sprintf("%s/d0=%s,d1=%s", c.Mode, c.Dir0, c.Dir1)
}
