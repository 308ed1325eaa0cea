package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Статус сервиса и зависимостей",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/v1/explorer/sessions": {
            "post": {
                "tags": ["Explorer"],
                "summary": "Создать сессию обозревателя",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/dto.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/explorer/sessions/{id}": {
            "get": {
                "tags": ["Explorer"],
                "summary": "Состояние сессии",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Explorer"],
                "summary": "Удалить сессию",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/explorer/sessions/{id}/filters": {
            "put": {
                "tags": ["Explorer"],
                "summary": "Применить фильтры",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.FiltersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/explorer/sessions/{id}/nodes/{node}/toggle": {
            "post": {
                "tags": ["Explorer"],
                "summary": "Раскрыть или свернуть узел",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "node", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/explorer/sessions/{id}/map": {
            "get": {
                "tags": ["Explorer"],
                "summary": "Данные карты для активного уровня",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/explorer/sessions/{id}/time": {
            "get": {
                "tags": ["Time"],
                "summary": "Состояние фильтра времени",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/explorer/sessions/{id}/time/open": {
            "post": {
                "tags": ["Time"],
                "summary": "Открыть список уровня времени",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.OpenTimeRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/explorer/sessions/{id}/time/{level}": {
            "put": {
                "tags": ["Time"],
                "summary": "Выбрать значение уровня времени",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "level", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SetTimeRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/explorer/sessions/{id}/time/submit": {
            "post": {
                "tags": ["Time"],
                "summary": "Применить фильтр времени",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/explorer/dimensions/{dimension}": {
            "get": {
                "tags": ["Explorer"],
                "summary": "Варианты фильтра confidence / satelite",
                "parameters": [{"type": "string", "name": "dimension", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/query/{dimension}": {
            "get": {
                "tags": ["Warehouse"],
                "summary": "Агрегаты по измерению",
                "parameters": [{"type": "string", "name": "dimension", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/hotspot": {
            "get": {
                "tags": ["Warehouse"],
                "summary": "Поток точек hotspot",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "dto.FiltersRequest": {
            "type": "object",
            "properties": {
                "confidence": {"type": "string"},
                "satelite": {"type": "string"},
                "tahun": {"type": "string"},
                "semester": {"type": "string"},
                "kuartal": {"type": "string"},
                "bulan": {"type": "string"},
                "hari": {"type": "string"}
            }
        },
        "dto.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "filters": {"$ref": "#/definitions/dto.FiltersRequest"},
                "path": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.OpenTimeRequest": {
            "type": "object",
            "properties": {
                "level": {"type": "string"},
                "node": {"type": "integer"}
            }
        },
        "dto.SetTimeRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Hotspot OLAP Explorer API",
	Description:      "Drill-down по горячим точкам: дерево агрегатов, каскадный фильтр времени и карта.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
