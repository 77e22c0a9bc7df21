package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// OpenStore opens the backend selected by cfg.Driver.
func OpenStore(cfg StorageConfig, log logrus.FieldLogger) (Store, error) {
	log.WithFields(logrus.Fields{"driver": cfg.Driver, "path": cfg.Path}).Debug("opening store")

	switch cfg.Driver {
	case driverSQLite:
		return NewRepo(cfg.Path, log)
	case driverBolt:
		return NewBoltRepo(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
