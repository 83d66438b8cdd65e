// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwpm

import "fmt"

// ReserveRouter reserves PMA, if present, then RTR.
func (h *Instance) ReserveRouter() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.forSingleIP(h.rtr, ReserveRouter)
}

// ReleaseRouter returns RTR and PMA to Inactive. It is a no-op if the router
// isn't reserved.
func (h *Instance) ReleaseRouter() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.forSingleIP(h.rtr, ReleaseRouter)
}

// ReserveResource admits the IP implementing r. Resources that aren't wired
// on this chip fail with ErrUnavailable before any register access.
func (h *Instance) ReserveResource(r ResourceID) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	id, ok := h.chip.IsResourceActive(r)
	if !ok {
		h.logf("resource %d: %v", r, ErrUnavailable)
		return fmt.Errorf("resource %d: %w", r, ErrUnavailable)
	}
	if ip, found := h.table.IP(id); !found || ip.Floorswept() {
		h.logf("resource %d: ip %d: %v", r, id, ErrUnavailable)
		return fmt.Errorf("resource %d: %w", r, ErrUnavailable)
	}
	return h.forSingleIP(id, Reserve)
}

// BindResources enables every Reserved IP. Failing IPs are reported in a
// SweepError; the others stay Bound.
func (h *Instance) BindResources() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.forAllIP(Bind)
}

// ReleaseResources unbinds then releases every IP except the router. The
// release phase runs even if the unbind phase failed. A release phase error
// is preferred over an unbind phase error.
func (h *Instance) ReleaseResources() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.releaseResources()
}

func (h *Instance) releaseResources() error {
	unbindErr := h.forAllIP(Unbind)
	if unbindErr != nil {
		h.logf("release resources: unbind phase: %v", unbindErr)
	}
	if err := h.forAllIP(Release); err != nil {
		h.logf("release resources: release phase: %v", err)
		return err
	}
	return unbindErr
}
