package order

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusApproved) {
		t.Fatalf("expected pending -> approved allowed")
	}
	if !CanTransition(StatusPending, StatusRejected) {
		t.Fatalf("expected pending -> rejected allowed")
	}
	if CanTransition(StatusPending, StatusDispatched) {
		t.Fatalf("expected pending -> dispatched not allowed")
	}
	if CanTransition(StatusApproved, StatusApproved) {
		t.Fatalf("expected self transition not allowed")
	}
	if CanTransition(StatusRejected, StatusApproved) {
		t.Fatalf("expected no transition out of rejected")
	}
	if CanTransition(StatusDelivered, StatusPending) {
		t.Fatalf("expected no transition out of delivered")
	}
}

func TestApplyApprove(t *testing.T) {
	o := &Order{Status: StatusPending}
	now := time.Now()
	if err := ApplyApprove(o, "Mary Manager", "", now); err != nil {
		t.Fatalf("ApplyApprove: %v", err)
	}
	if o.Status != StatusApproved {
		t.Fatalf("expected status approved, got %s", o.Status)
	}
	if o.ApprovedBy != "Mary Manager" || o.ApprovedAt == nil {
		t.Fatalf("expected approved_by/approved_at set")
	}

	// 已离开 pending，重复审批必须失败
	if err := ApplyApprove(o, "Mary Manager", "", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second approve to fail with ErrInvalidTransition, got %v", err)
	}
}

func TestApplyRejectRequiresReason(t *testing.T) {
	o := &Order{Status: StatusPending, Notes: "original note"}
	if err := ApplyReject(o, "   ", time.Now()); err == nil {
		t.Fatalf("expected empty reason rejected")
	}
	// 校验失败不得动任何字段
	if o.Status != StatusPending || o.Notes != "original note" {
		t.Fatalf("expected order unchanged after failed reject")
	}

	if err := ApplyReject(o, "out of stock", time.Now()); err != nil {
		t.Fatalf("ApplyReject: %v", err)
	}
	if o.Status != StatusRejected || o.Notes != "out of stock" {
		t.Fatalf("expected rejected with reason, got %s / %q", o.Status, o.Notes)
	}
}

func TestApplyDispatchValidation(t *testing.T) {
	now := time.Now()

	// pending 不能直接发运
	o := &Order{Status: StatusPending}
	if err := ApplyDispatch(o, "Dave", "TRK-1", 1, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected dispatch on pending to fail, got %v", err)
	}
	if o.Status != StatusPending || o.TrackingNumber != "" {
		t.Fatalf("expected order unchanged after failed dispatch")
	}

	// 缺车辆
	o = &Order{Status: StatusApproved}
	if err := ApplyDispatch(o, "Dave", "TRK-1", 0, now); err == nil {
		t.Fatalf("expected missing vehicle rejected")
	}
	if o.Status != StatusApproved {
		t.Fatalf("expected order unchanged")
	}

	// 缺运单号
	if err := ApplyDispatch(o, "Dave", "  ", 1, now); err == nil {
		t.Fatalf("expected missing tracking number rejected")
	}

	if err := ApplyDispatch(o, "Dave", "TRK-1", 1, now); err != nil {
		t.Fatalf("ApplyDispatch: %v", err)
	}
	if o.Status != StatusDispatched || o.TrackingNumber != "TRK-1" || o.DispatchedVehicleID == nil || *o.DispatchedVehicleID != 1 {
		t.Fatalf("expected dispatch fields set: %+v", o)
	}
}

func TestApplyDeliverKeepsTrackingNumber(t *testing.T) {
	now := time.Now()
	o := &Order{Status: StatusApproved}
	if err := ApplyDispatch(o, "Dave", "TRK-42", 2, now); err != nil {
		t.Fatalf("ApplyDispatch: %v", err)
	}
	if err := ApplyDeliver(o, "https://pod.example.com/42.jpg", "left at gate", now); err != nil {
		t.Fatalf("ApplyDeliver: %v", err)
	}
	if o.Status != StatusDelivered {
		t.Fatalf("expected delivered, got %s", o.Status)
	}
	// 发运时写入的运单号要原样保留到送达
	if o.TrackingNumber != "TRK-42" {
		t.Fatalf("expected tracking number preserved, got %q", o.TrackingNumber)
	}
	if o.PODImage == "" || o.DeliveredAt == nil {
		t.Fatalf("expected pod_image/delivered_at set")
	}
}

func TestApplyDeliverRequiresPOD(t *testing.T) {
	o := &Order{Status: StatusDispatched, TrackingNumber: "TRK-7"}
	if err := ApplyDeliver(o, "", "notes", time.Now()); err == nil {
		t.Fatalf("expected missing pod rejected")
	}
	if o.Status != StatusDispatched {
		t.Fatalf("expected order unchanged")
	}
}
