package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	// Admin / Management 对任意 required 集合都放行
	if !HasPermission(RoleAdmin) {
		t.Fatalf("expected Admin allowed with empty required set")
	}
	if !HasPermission(RoleManagement, RoleDeliveryAgent) {
		t.Fatalf("expected Management allowed regardless of required set")
	}

	if !HasPermission(RoleSales, OrderCreateRoles...) {
		t.Fatalf("expected Sales allowed to create orders")
	}
	if HasPermission(RoleSales, OrderApproveRoles...) {
		t.Fatalf("expected Sales not allowed to approve orders")
	}
	if HasPermission(RoleDeliveryAgent, OrderDispatchRoles...) {
		t.Fatalf("expected DeliveryAgent not allowed to dispatch")
	}
	if !HasPermission(RoleInventory, OrderDispatchRoles...) {
		t.Fatalf("expected Inventory allowed to dispatch")
	}
}

func TestHasPermissionUnknownRole(t *testing.T) {
	if HasPermission(Role("Superuser"), RoleAdmin) {
		t.Fatalf("expected unknown role denied")
	}
	if HasPermission(Role(""), OrderCreateRoles...) {
		t.Fatalf("expected empty role denied")
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Manager")
	if !ok || r != RoleManager {
		t.Fatalf("ParseRole Manager: %v %v", r, ok)
	}
	if _, ok := ParseRole("manager"); ok {
		t.Fatalf("expected case-sensitive parse to fail")
	}
	if _, ok := ParseRole("Nobody"); ok {
		t.Fatalf("expected unknown role to fail")
	}
}
