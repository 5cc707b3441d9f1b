package engine

import (
	"patchmatch/internal/errors"
)

func unknownDistro(tag string) error {
	return errors.New(errors.RegistryInvalid, "unknown distro tag "+tag, nil)
}
