package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/theoremus-urban-solutions/apc-anonymizer/config"
	"github.com/theoremus-urban-solutions/apc-anonymizer/counting"
	"github.com/theoremus-urban-solutions/apc-anonymizer/health"
	"github.com/theoremus-urban-solutions/apc-anonymizer/internal"
	"github.com/theoremus-urban-solutions/apc-anonymizer/pipeline"
	"github.com/theoremus-urban-solutions/apc-anonymizer/profile"
	"github.com/theoremus-urban-solutions/apc-anonymizer/registry"
	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

func main() {
	mode := flag.String("mode", "oneshot", "oneshot")
	profilesPath := flag.String("profiles", "", "profile collection JSON file applied as an overlay update")
	cataloguePath := flag.String("catalogue", "", "vehicle catalogue JSON file")
	catalogueTopic := flag.String("catalogueTopic", "", "catalogue topic name, used to resolve the feed publisher")
	apcPath := flag.String("apc", "-", "line-delimited matched APC JSON; '-' reads stdin")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		panic(err)
	}
	cfg := config.Config

	healthServer := health.NewServer(cfg.Health.Port)
	healthServer.Start()

	switch *mode {
	case "oneshot":
		profiles := profile.NewStore()
		if cfg.Anonymization.ProfileBasePath != "" {
			if err := seedProfileBase(profiles, cfg.Anonymization.ProfileBasePath); err != nil {
				panic(err)
			}
		}
		if *profilesPath != "" {
			if err := applyProfileFile(profiles, *profilesPath); err != nil {
				panic(err)
			}
		}
		devices := registry.NewFromSeed(cfg.Anonymization.AcceptedDevices)
		if *cataloguePath != "" {
			if err := applyCatalogueFile(devices, *cataloguePath, *catalogueTopic, cfg.FeedPublishers()); err != nil {
				panic(err)
			}
		}
		counts := counting.NewCache(time.Duration(cfg.Anonymization.CountCacheIdleMinutes) * time.Minute)
		p := pipeline.New(profiles, counts, devices, cfg.Anonymization.AuthorityFeedPublishers, pipeline.NewWarningAggregator())
		healthServer.SetOK(true)

		if err := anonymizeStream(p, *apcPath); err != nil {
			panic(err)
		}
		p.Warnings().Flush()
	default:
		panic("unknown mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(ctx); err != nil {
		log.Printf("health server shutdown error: %v", err)
	}
}

func seedProfileBase(profiles *profile.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	collection, err := schema.ParseProfileCollection(data)
	if err != nil {
		return err
	}
	return profiles.SeedBase(collection)
}

func applyProfileFile(profiles *profile.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	collection, err := schema.ParseProfileCollection(data)
	if err != nil {
		return err
	}
	return profiles.ApplyCollection(collection)
}

func applyCatalogueFile(devices *registry.Registry, path, topic string, feedPublishers []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	vehicles, err := schema.ParseVehicleCatalogue(data)
	if err != nil {
		return err
	}
	feedPublisherID, ok := registry.FeedPublisherFromTopic(topic, feedPublishers)
	if !ok {
		return fmt.Errorf("could not resolve a feed publisher from catalogue topic %q", topic)
	}
	added := devices.ReplaceForFeedPublisher(feedPublisherID, vehicles)
	log.Printf("accepted devices loaded for %s: %d vehicles with counters", feedPublisherID, added)
	return nil
}

func anonymizeStream(p *pipeline.Pipeline, path string) error {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := schema.ParseMatchedApc(line)
		if err != nil {
			log.Printf("skipping unparseable APC line: %v", err)
			continue
		}
		out, ok := p.Process(msg)
		if !ok {
			continue
		}
		payload, err := out.Marshal()
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
	}
	return scanner.Err()
}
