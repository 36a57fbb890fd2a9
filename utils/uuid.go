package utils

import (
	uuid "github.com/satori/go.uuid"
	"github.com/segmentio/ksuid"
)

// KSUID returns a sortable unique id, used for entity primary keys.
func KSUID() string {
	return ksuid.New().String()
}

func UUID() string {
	return uuid.NewV4().String()
}
