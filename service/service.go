// Package service runs the anonymizer's processing loops against a broker
// client: profile ingestion, vehicle catalogue ingestion and APC
// processing.
package service

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/apc-anonymizer/broker"
	"github.com/theoremus-urban-solutions/apc-anonymizer/pipeline"
	"github.com/theoremus-urban-solutions/apc-anonymizer/profile"
	"github.com/theoremus-urban-solutions/apc-anonymizer/registry"
	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

// progressInterval is how many APC messages pass between progress logs and
// warning flushes.
const progressInterval = 100

// Options wires the processing loops to the shared state and the broker
// client's reader, consumer and producer handles.
type Options struct {
	Profiles *profile.Store
	Devices  *registry.Registry
	Pipeline *pipeline.Pipeline

	// FeedPublishers is the fallback table for catalogue topic resolution.
	FeedPublishers []string

	ProfileReader   broker.Reader
	CatalogueReader broker.Reader
	ApcConsumer     broker.Consumer
	Producer        broker.Producer

	// RequireInitialProfileRead gates the APC loop on one successful
	// profile bootstrap, so messages are never anonymized against an empty
	// profile store.
	RequireInitialProfileRead bool
	LocatorStep               time.Duration

	// Ready, if set, is flipped to true once startup reads are done.
	Ready func(ok bool)
}

// Run bootstraps the profile store and then drives the three loops until
// the context is cancelled or a broker operation fails. Per-message problems
// never end a loop; they are logged or aggregated and the loop continues.
func Run(ctx context.Context, opts Options) error {
	if opts.RequireInitialProfileRead {
		log.Printf("bootstrapping profile store from the latest retained profile message")
		msg, err := broker.LatestMessage(ctx, opts.ProfileReader, opts.LocatorStep)
		if err != nil {
			return err
		}
		applyProfileMessage(opts.Profiles, msg)
	}
	if opts.Ready != nil {
		opts.Ready(true)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runProfileLoop(ctx, opts.Profiles, opts.ProfileReader) })
	if opts.CatalogueReader != nil {
		g.Go(func() error { return runCatalogueLoop(ctx, opts.Devices, opts.CatalogueReader, opts.FeedPublishers) })
	}
	g.Go(func() error { return runApcLoop(ctx, opts.Pipeline, opts.ApcConsumer, opts.Producer) })
	return g.Wait()
}

func applyProfileMessage(store *profile.Store, msg broker.Message) {
	collection, err := schema.ParseProfileCollection(msg.Data())
	if err != nil {
		log.Printf("could not parse profile collection message from %s: %v", msg.Topic(), err)
		return
	}
	if err := store.ApplyCollection(collection); err != nil {
		log.Printf("rejected profile collection update: %v", err)
		return
	}
	log.Printf("applied profile collection update, %d vehicles in effective map", store.VehicleCount())
}

func runProfileLoop(ctx context.Context, store *profile.Store, reader broker.Reader) error {
	log.Printf("starting profile update loop")
	for {
		msg, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		applyProfileMessage(store, msg)
	}
}

func runCatalogueLoop(ctx context.Context, devices *registry.Registry, reader broker.Reader, feedPublishers []string) error {
	log.Printf("starting vehicle catalogue loop")
	for {
		msg, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		feedPublisherID, ok := registry.FeedPublisherFromTopic(msg.Topic(), feedPublishers)
		if !ok {
			log.Printf("could not determine feed publisher from catalogue topic %q, skipping message", msg.Topic())
			continue
		}
		vehicles, err := schema.ParseVehicleCatalogue(msg.Data())
		if err != nil {
			log.Printf("could not parse vehicle catalogue message from %s: %v", msg.Topic(), err)
			continue
		}
		added := devices.ReplaceForFeedPublisher(feedPublisherID, vehicles)
		log.Printf("updated accepted devices for %s: %d of %d vehicles have counters, %d vehicles restricted in total",
			feedPublisherID, added, len(vehicles), devices.Len())
	}
}

func runApcLoop(ctx context.Context, p *pipeline.Pipeline, consumer broker.Consumer, producer broker.Producer) error {
	log.Printf("starting APC message processing loop")
	defer func() {
		if err := producer.Flush(); err != nil {
			log.Printf("flushing the producer on shutdown failed: %v", err)
		}
	}()
	var received, produced, skipped int
	for {
		msg, err := consumer.Receive(ctx)
		if err != nil {
			return err
		}
		received++
		out, ok := process(p, msg)
		if ok {
			payload, err := out.Marshal()
			if err != nil {
				return err
			}
			err = producer.Send(ctx, broker.OutboundMessage{
				Data:       payload,
				Properties: map[string]string{"topicSuffix": out.AuthorityID},
				EventTime:  msg.EventTime(),
			})
			if err != nil {
				return err
			}
			produced++
		} else {
			skipped++
		}
		if err := consumer.Ack(msg); err != nil {
			return err
		}
		if received%progressInterval == 0 {
			log.Printf("APC progress: received=%d produced=%d skipped=%d", received, produced, skipped)
			p.Warnings().Flush()
		}
	}
}

func process(p *pipeline.Pipeline, msg broker.Message) (*schema.AnonymizedApc, bool) {
	apc, err := schema.ParseMatchedApc(msg.Data())
	if err != nil {
		p.Warnings().Add(pipeline.WarningBadPayload, msg.Topic())
		return nil, false
	}
	return p.Process(apc)
}
