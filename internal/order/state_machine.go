package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition 非法状态流转。正确实现的调用方（UI 只展示合法动作）
// 不应触发该错误，出现即说明调用侧逻辑有问题。
var ErrInvalidTransition = errors.New("invalid order status transition")

// AllowTransition 定义订单状态机的允许流转关系（有向图）。
// pending 可分叉到 approved / rejected；之后是一条直线到 delivered。
var AllowTransition = map[Status][]Status{
	StatusPending:    {StatusApproved, StatusRejected},
	StatusApproved:   {StatusDispatched},
	StatusDispatched: {StatusDelivered},
	// 终态：不允许从 rejected / delivered 再流转
	StatusRejected:  {},
	StatusDelivered: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
// 不允许自环：重复审批同一订单会在这里被拒绝。
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// 以下 Apply* 按阶段应用状态变更。统一约定：
// - 先校验源状态与必填输入，全部通过才落字段（all-or-nothing）
// - 校验失败时订单保持原样

// ApplyApprove 审批通过：写入 approved_by / approved_at。
// comment 可选，追加到订单备注。
func ApplyApprove(o *Order, approvedBy, comment string, now time.Time) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	if !CanTransition(o.Status, StatusApproved) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusApproved)
	}
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		return fmt.Errorf("approver name required")
	}

	o.Status = StatusApproved
	o.ApprovedBy = approvedBy
	t := now
	o.ApprovedAt = &t
	if c := strings.TrimSpace(comment); c != "" {
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += c
	}
	return nil
}

// ApplyReject 审批驳回（终态）：驳回原因必填，写入 notes。
func ApplyReject(o *Order, reason string, now time.Time) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	if !CanTransition(o.Status, StatusRejected) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusRejected)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("rejection reason required")
	}

	o.Status = StatusRejected
	o.Notes = reason
	return nil
}

// ApplyDispatch 发运：运单号与车辆必填；车辆是否 active 由服务层校验
// （状态机只管订单自身字段）。
func ApplyDispatch(o *Order, dispatchedBy, trackingNumber string, vehicleID int64, now time.Time) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	if !CanTransition(o.Status, StatusDispatched) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusDispatched)
	}
	dispatchedBy = strings.TrimSpace(dispatchedBy)
	trackingNumber = strings.TrimSpace(trackingNumber)
	if dispatchedBy == "" {
		return fmt.Errorf("dispatcher name required")
	}
	if trackingNumber == "" {
		return fmt.Errorf("tracking number required")
	}
	if vehicleID <= 0 {
		return fmt.Errorf("vehicle required")
	}

	o.Status = StatusDispatched
	o.DispatchedBy = dispatchedBy
	o.TrackingNumber = trackingNumber
	o.DispatchedVehicleID = &vehicleID
	t := now
	o.DispatchedAt = &t
	return nil
}

// ApplyDeliver 送达（终态）：POD 凭证必填，notes 可选。
func ApplyDeliver(o *Order, podImage, deliveryNotes string, now time.Time) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	if !CanTransition(o.Status, StatusDelivered) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusDelivered)
	}
	podImage = strings.TrimSpace(podImage)
	if podImage == "" {
		return fmt.Errorf("proof of delivery image required")
	}

	o.Status = StatusDelivered
	o.PODImage = podImage
	o.DeliveryNotes = strings.TrimSpace(deliveryNotes)
	t := now
	o.DeliveredAt = &t
	return nil
}
