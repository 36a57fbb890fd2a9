package query

type EndpointQuery struct {
	Query

	Enabled        *bool
	OrganizationId *string
}

func (q *EndpointQuery) WhereMap() map[string]interface{} {
	maps := make(map[string]interface{})
	if q.Enabled != nil {
		maps["enabled"] = *q.Enabled
	}
	if q.OrganizationId != nil {
		maps["org_id"] = *q.OrganizationId
	}
	return maps
}

type EventQuery struct {
	Query

	EventType *string
}

func (q *EventQuery) WhereMap() map[string]interface{} {
	maps := make(map[string]interface{})
	if q.EventType != nil {
		maps["event_type"] = *q.EventType
	}
	return maps
}

type AttemptQuery struct {
	Query

	EventId    *string
	EndpointId *string
	Status     *string
}

func (q *AttemptQuery) WhereMap() map[string]interface{} {
	maps := make(map[string]interface{})
	if q.EventId != nil {
		maps["event_id"] = *q.EventId
	}
	if q.EndpointId != nil {
		maps["endpoint_id"] = *q.EndpointId
	}
	if q.Status != nil {
		maps["status"] = *q.Status
	}
	return maps
}
