// Package store defines the persistence interfaces of the application and
// the shared error taxonomy their implementations return. Concrete
// backends live under internal/platform (postgres, memstore).
package store
