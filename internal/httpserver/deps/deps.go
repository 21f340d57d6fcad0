package deps

import (
	"time"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/logger"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
	linksync "github.com/linkdeck/linkdeck/internal/sync"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	JWTSecret []byte // HMAC secret for bearer token verification

	Store    *sqlite.Store     // System of record (used by readiness/infra checks)
	Cache    *redisstore.Cache // Optional snapshot cache (nil when disabled)
	Catalog  *catalog.Service  // Catalog reads and publishes
	Sync     *linksync.Service // Refresh + status
	Promoter *linksync.Promoter

	SeedReloadTrigger chan struct{} // Channel to trigger manual seed reload (nil if seed file not configured)
}
