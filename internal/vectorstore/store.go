// Package vectorstore keeps one collection of embedded chunks per document.
package vectorstore

import (
	"errors"
	"strings"
)

const collectionPrefix = "doc_"

var ErrEmptyNamespace = errors.New("namespace is empty")

// CollectionName maps a document id to its collection.
func CollectionName(namespace string) string {
	return collectionPrefix + namespace
}

func validateNamespace(namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return ErrEmptyNamespace
	}
	return nil
}
