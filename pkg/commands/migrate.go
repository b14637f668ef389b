package commands

import (
	"fmt"

	"github.com/chalanpro/tenant-gateway/pkg/db"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func MigrateAction(direction string) cli.ActionFunc {
	return func(c *cli.Context) error {
		var steps []int
		if n := c.Int("steps"); n > 0 {
			steps = append(steps, n)
		}
		if err := db.MigrateDB(db.GetUrl(), direction, steps...); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", direction, err)
		}
		log.Info().Msgf("Successfully migrated %s", direction)
		return nil
	}
}
