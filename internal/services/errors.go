package services

import (
	"errors"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

// notFound turns repos.ErrNotFound into a 404 naming what was missing.
func notFound(err error, what string) error {
	if errors.Is(err, repos.ErrNotFound) {
		return domain.NotFoundf("%s not found", what)
	}
	return err
}
