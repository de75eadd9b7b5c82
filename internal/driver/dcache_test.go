package driver_test

import (
	"testing"

	"mica/internal/driver"
	"mica/internal/project"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := project.HashBytes([]byte("unit-a"))
	in := &driver.DiskPayload{InputHash: key, MIRJSON: []byte(`{"funcs":[]}`)}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out driver.DiskPayload
	ok, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("stored entry not found")
	}
	if out.InputHash != key || string(out.MIRJSON) != string(in.MIRJSON) {
		t.Fatalf("payload changed across the cache: %+v", out)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var out driver.DiskPayload
	ok, err := cache.Get(project.HashBytes([]byte("never stored")), &out)
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if ok {
		t.Fatalf("hit for an absent key")
	}
}

func TestDiskCacheOverwrite(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := project.HashBytes([]byte("unit"))
	if err := cache.Put(key, &driver.DiskPayload{MIRJSON: []byte("v1")}); err != nil {
		t.Fatalf("put v1: %v", err)
	}
	if err := cache.Put(key, &driver.DiskPayload{MIRJSON: []byte("v2")}); err != nil {
		t.Fatalf("put v2: %v", err)
	}
	var out driver.DiskPayload
	if ok, _ := cache.Get(key, &out); !ok || string(out.MIRJSON) != "v2" {
		t.Fatalf("overwrite lost: %q", out.MIRJSON)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := project.HashBytes([]byte("unit"))
	if err := cache.Put(key, &driver.DiskPayload{MIRJSON: []byte("x")}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	var out driver.DiskPayload
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatalf("entry survived DropAll")
	}
	// The cache stays usable after a drop.
	if err := cache.Put(key, &driver.DiskPayload{MIRJSON: []byte("y")}); err != nil {
		t.Fatalf("put after drop: %v", err)
	}
}
