package distro

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/common/commonerr"
	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/osutil"
)

var (
	detectorsM sync.RWMutex
	detectors  = make(map[string]Detector)

	// detectorOrder preserves registration order so detection precedence is
	// stable across runs.
	detectorOrder []string
)

// Detector represents anything that can determine the Distro of a host from
// a FilesMap of its filesystem.
type Detector interface {
	// Detect attempts to determine a Distro from a FilesMap of a host.
	Detect(osutil.FilesMap) (*database.Distro, error)

	// RequiredFilenames returns the list of files required to be in the
	// FilesMap provided to the Detect method.
	//
	// Filenames must not begin with "/".
	RequiredFilenames() []string
}

// RegisterDetector makes a Detector available by the provided name.
//
// If called twice with the same name, the name is blank, or if the provided
// Detector is nil, this function panics.
func RegisterDetector(name string, d Detector) {
	if name == "" {
		panic("distro: could not register a Detector with an empty name")
	}
	if d == nil {
		panic("distro: could not register a nil Detector")
	}

	detectorsM.Lock()
	defer detectorsM.Unlock()

	if _, dup := detectors[name]; dup {
		panic("distro: RegisterDetector called twice for " + name)
	}

	detectors[name] = d
	detectorOrder = append(detectorOrder, name)
}

// Detect iterates over the registered detectors, in registration order, and
// returns the first Distro found.
func Detect(files osutil.FilesMap) (*database.Distro, error) {
	detectorsM.RLock()
	defer detectorsM.RUnlock()

	for _, name := range detectorOrder {
		detector := detectors[name]
		d, err := detector.Detect(files)
		if err != nil {
			log.WithError(err).WithField("detector", name).Error("failed while attempting to detect distro")
			return nil, err
		}

		if d != nil {
			log.WithFields(log.Fields{"detector": name, "distro": d.String()}).Debug("detected distro")
			return d, nil
		}
	}

	return nil, commonerr.ErrNotFound
}

// RequiredFilenames returns the total list of files required for all
// registered Detectors.
func RequiredFilenames() (files []string) {
	detectorsM.RLock()
	defer detectorsM.RUnlock()

	for _, detector := range detectors {
		files = append(files, detector.RequiredFilenames()...)
	}

	return
}
