package infrastructure

import "ticketing/internal/service/inventory/domain"

// ToDomainActivity 将数据库模型转换为领域模型
func ToDomainActivity(m *ActivityModel) *domain.Activity {
	if m == nil {
		return nil
	}
	return &domain.Activity{
		ID:          int64(m.ID),
		Key:         m.ActivityKey,
		Name:        m.DisplayName,
		Description: m.Description,
		Timing:      m.Timing,
		UnitPrice:   m.UnitPrice,
		Capacity:    m.Capacity,
		Reserved:    m.ReservedCount,
		IsActive:    m.IsActive,
		IsSoldOut:   m.IsSoldOut,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomainActivity 将领域模型转换为数据库模型
func FromDomainActivity(a *domain.Activity) *ActivityModel {
	return &ActivityModel{
		ID:            uint(a.ID),
		ActivityKey:   a.Key,
		DisplayName:   a.Name,
		Description:   a.Description,
		Timing:        a.Timing,
		UnitPrice:     a.UnitPrice,
		Capacity:      a.Capacity,
		ReservedCount: a.Reserved,
		IsActive:      a.IsActive,
		IsSoldOut:     a.IsSoldOut,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// mutableColumns 是一次变更需要写回的列
func mutableColumns(a *domain.Activity) map[string]interface{} {
	return map[string]interface{}{
		"display_name":   a.Name,
		"description":    a.Description,
		"timing":         a.Timing,
		"unit_price":     a.UnitPrice,
		"capacity":       a.Capacity,
		"reserved_count": a.Reserved,
		"is_active":      a.IsActive,
		"is_sold_out":    a.IsSoldOut,
		"version":        a.Version,
		"updated_at":     a.UpdatedAt,
	}
}
