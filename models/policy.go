package models

// CanAccessTicket decides whether a user may see or act on a ticket.
// Every ticket read and mutation in the API goes through this predicate,
// so it must match the visibility rules exactly:
//
//   - admins can access everything
//   - support can access tickets assigned to them, plus unassigned
//     tickets that are still open
//   - clients can only access tickets they created
//
// Unknown roles are denied.
func CanAccessTicket(ticket *Ticket, userID uint, role RoleName) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleSupport:
		if ticket.AssigneeID != nil && *ticket.AssigneeID == userID {
			return true
		}
		return ticket.Status == TicketStatusOpen && ticket.AssigneeID == nil
	case RoleClient:
		return ticket.CreatorID == userID
	}
	return false
}
