package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/loog-project/docdiff/internal/service"
	"github.com/loog-project/docdiff/internal/store"
	bboltStore "github.com/loog-project/docdiff/internal/store/bbolt"
	"github.com/loog-project/docdiff/internal/util"
)

const (
	minSnapshotInterval = 1
	maxSnapshotInterval = 1024
)

var (
	// store flags, shared by commit, show, log and ls
	noDurableSync    bool
	disableCache     bool
	compressStore    bool
	snapshotInterval uint64
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&noDurableSync, "no-durable-sync", false,
		"Skip fsync on every commit to improve throughput (unsafe on crashes)")
	rootCmd.PersistentFlags().BoolVar(&disableCache, "disable-cache", false,
		"Disable in-memory cache layer for the revision store")
	rootCmd.PersistentFlags().BoolVar(&compressStore, "compress", false,
		"Compress new revisions with zstd (existing revisions stay readable)")
	rootCmd.PersistentFlags().Uint64VarP(&snapshotInterval, "snapshot-interval", "s", 8,
		"Create a full snapshot after this many patches")

	mustBind("no-durable-sync",
		viper.BindPFlag("no-durable-sync", rootCmd.PersistentFlags().Lookup("no-durable-sync")))
	mustBind("disable-cache",
		viper.BindPFlag("disable-cache", rootCmd.PersistentFlags().Lookup("disable-cache")))
	mustBind("compress",
		viper.BindPFlag("compress", rootCmd.PersistentFlags().Lookup("compress")))
	mustBind("snapshot-interval",
		viper.BindPFlag("snapshot-interval", rootCmd.PersistentFlags().Lookup("snapshot-interval")))
}

// openTracker opens the revision store configured by --db and wraps it in a
// tracker service. The caller closes the service.
func openTracker() (*service.TrackerService, error) {
	path := viper.GetString("db")
	interval := util.Clamp(viper.GetUint64("snapshot-interval"), minSnapshotInterval, maxSnapshotInterval)

	log.Debug().
		Str("store-file", path).
		Uint64("snapshot-interval", interval).
		Bool("no-durable-sync", viper.GetBool("no-durable-sync")).
		Bool("compress", viper.GetBool("compress")).
		Msg("Preparing object revision store...")

	codec := store.DefaultCodec
	if viper.GetBool("compress") {
		var err error
		if codec, err = store.NewZstdCodec(codec); err != nil {
			return nil, err
		}
	}
	rps, err := bboltStore.New(path,
		bboltStore.WithCodec(codec),
		bboltStore.WithNoSync(viper.GetBool("no-durable-sync")))
	if err != nil {
		return nil, err
	}
	return service.NewTrackerService(rps, interval, !viper.GetBool("disable-cache")), nil
}
