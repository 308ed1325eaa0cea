// Package docs Hotspot OLAP Explorer API.
//
// Drill-down по данным о горячих точках (hotspot) лесных пожаров Индонезии.
// Предоставляет API для сессий обозревателя: дерево агрегатов по
// административной иерархии, каскадный фильтр времени и данные для
// хороплетной карты. Опционально отдаёт эталонный сервис измерений поверх
// хранилища (star schema).
//
// Основные возможности:
// - Раскрытие дерева pulau → provinsi → kota → kecamatan → desa
// - Каскадный фильтр tahun → semester → kuartal → bulan → hari
// - Пороги низкий / средний / высокий и легенда карты
// - /api/query/{dimension} и /api/hotspot поверх Postgres
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
