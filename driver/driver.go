// Package driver wires the protocol roles to configuration, metrics and
// the RPC transport.
package driver

import (
	"bytes"
	"time"

	"github.com/ugorji/go/codec"

	"vidpir/pir"
	"vidpir/rpc"
)

// PirServerDriver is the server role plus the introspection and metrics
// hooks used by the CLI. Method signatures follow net/rpc conventions.
type PirServerDriver interface {
	Answer(req pir.QueryReq, resp *pir.Answer) error

	Items(none int, out *[]string) error
	NumItems(none int, out *int) error

	ResetMetrics(none int, none2 *int) error
	GetAnswerTimer(none int, out *time.Duration) error
	GetAnswerBytes(none int, out *int) error
}

type serverDriver struct {
	proc *pir.Processor

	measureBandwidth bool
	shards           pir.ShardStore

	// For profiling
	answerTime  time.Duration
	answerBytes int
}

func NewServerDriver(shards pir.ShardStore, masks pir.MaskStore, measureBandwidth bool) (*serverDriver, error) {
	return &serverDriver{
		proc:             pir.NewProcessor(shards, masks, pir.RandSource()),
		shards:           shards,
		measureBandwidth: measureBandwidth,
	}, nil
}

func (d *serverDriver) Answer(req pir.QueryReq, resp *pir.Answer) error {
	if d.measureBandwidth {
		reqSize, err := SerializedSizeOf(req)
		if err != nil {
			return err
		}
		d.answerBytes += reqSize
	}

	start := time.Now()
	if err := d.proc.Answer(req, resp); err != nil {
		return err
	}
	d.answerTime += time.Since(start)

	if d.measureBandwidth {
		respSize, err := SerializedSizeOf(resp)
		if err != nil {
			return err
		}
		d.answerBytes += respSize
	}
	return nil
}

func (d *serverDriver) Items(none int, out *[]string) error {
	*out = d.shards.Items()
	return nil
}

func (d *serverDriver) NumItems(none int, out *int) error {
	*out = d.shards.NumItems()
	return nil
}

func (d *serverDriver) GetAnswerTimer(none int, out *time.Duration) error {
	*out = d.answerTime
	return nil
}

func (d *serverDriver) GetAnswerBytes(none int, out *int) error {
	*out = d.answerBytes
	return nil
}

func (d *serverDriver) ResetMetrics(none int, none2 *int) error {
	d.answerTime = 0
	d.answerBytes = 0
	return nil
}

// SerializedSizeOf measures the wire size of a payload under the RPC
// codec.
func SerializedSizeOf(e interface{}) (int, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, rpc.CodecHandle())
	if err := enc.Encode(e); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}
