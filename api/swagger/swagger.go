package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Finance Mirror API",
        "description": "Read-only finance views over data synced from the school desktop application",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Fee collection and expense overview"},
        {"name": "Students", "description": "Student balances and payment status"},
        {"name": "Outstanding", "description": "Pre-calculated and recomputed outstanding balances"},
        {"name": "Expenses", "description": "Expense ledger"},
        {"name": "Inventories", "description": "Inventory stock, sales and history"},
        {"name": "Staff", "description": "Daily staff attendance logs"}
    ],
    "paths": {
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Monthly fee collections, expenses and balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Snapshot not loaded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/collections": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Tuition and transport collected this month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with computed outstanding and status",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "classGroup", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["paid", "partial", "outstanding"]},
                    {"name": "sortBy", "in": "query", "type": "string", "enum": ["name", "outstanding"]},
                    {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Student detail with per-period breakdown",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/outstanding": {
            "get": {
                "tags": ["Outstanding"],
                "summary": "Outstanding balances published by the desktop application",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/outstanding/computed": {
            "get": {
                "tags": ["Outstanding"],
                "summary": "Outstanding balances recomputed from enrollment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/outstanding/reconciliation": {
            "get": {
                "tags": ["Outstanding"],
                "summary": "Compare stored, pre-calculated and computed balances",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/outstanding/export": {
            "get": {
                "tags": ["Outstanding"],
                "summary": "Outstanding balances as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "source", "in": "query", "type": "string", "enum": ["pre-calculated", "computed"]}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "400": {"description": "Unknown source", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/expenses": {
            "get": {
                "tags": ["Expenses"],
                "summary": "Expense ledger newest first with totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inventories": {
            "get": {
                "tags": ["Inventories"],
                "summary": "Inventory items with stock statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inventories/{name}": {
            "get": {
                "tags": ["Inventories"],
                "summary": "Inventory item with sales and history",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/logs": {
            "get": {
                "tags": ["Staff"],
                "summary": "Staff attendance for one day grouped by role",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "staffId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/logs/export": {
            "get": {
                "tags": ["Staff"],
                "summary": "Staff attendance for one day as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "role", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
