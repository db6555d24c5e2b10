package main

import (
	"context"

	"github.com/hrygo/autosense/store"
)

// seedDemoData loads a small vehicle catalog and manual corpus so the
// demo mode works out of the box. Upserts make it idempotent across
// restarts.
func seedDemoData(ctx context.Context, st *store.Store) error {
	for _, v := range demoVehicles {
		if err := st.UpsertVehicle(ctx, v); err != nil {
			return err
		}
	}

	existing, err := st.ListManualChunks(ctx, &store.FindManualChunk{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range demoManualChunks {
		if err := st.CreateManualChunk(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

var demoVehicles = []*store.Vehicle{
	{ID: "toyota-aqua-2021", Make: "トヨタ", Model: "アクア", Year: 2021, Trim: "G", PhotoURL: "/static/vehicles/toyota-aqua-2021.jpg"},
	{ID: "toyota-prius-2019", Make: "トヨタ", Model: "プリウス", Year: 2019, Trim: "A", PhotoURL: "/static/vehicles/toyota-prius-2019.jpg"},
	{ID: "honda-fit-2020", Make: "ホンダ", Model: "フィット", Year: 2020, Trim: "HOME", PhotoURL: "/static/vehicles/honda-fit-2020.jpg"},
	{ID: "honda-nbox-2022", Make: "ホンダ", Model: "N-BOX", Year: 2022, Trim: "カスタムL", PhotoURL: "/static/vehicles/honda-nbox-2022.jpg"},
	{ID: "nissan-note-2021", Make: "日産", Model: "ノート", Year: 2021, Trim: "X", PhotoURL: "/static/vehicles/nissan-note-2021.jpg"},
	{ID: "suzuki-swift-2018", Make: "スズキ", Model: "スイフト", Year: 2018, Trim: "RS", PhotoURL: "/static/vehicles/suzuki-swift-2018.jpg"},
}

var demoManualChunks = []*store.ManualChunk{
	{
		VehicleID:   "toyota-aqua-2021",
		Content:     "ハイブリッドシステム起動時や低速走行時に、エンジンが停止して無音になることがありますが、これはハイブリッド車の正常な動作です。EVモードで走行している状態であり、故障ではありません。",
		Page:        42,
		Section:     "ハイブリッドシステムについて",
		ContentType: "specification",
	},
	{
		VehicleID:   "toyota-aqua-2021",
		Content:     "ブレーキ警告灯（赤色）が点灯した場合は、ただちに安全な場所に停車し、販売店にご連絡ください。そのまま走行を続けると重大な事故につながるおそれがあります。",
		Page:        88,
		Section:     "警告灯が点灯したとき",
		ContentType: "warning",
		HasWarning:  true,
	},
	{
		VehicleID:   "honda-fit-2020",
		Content:     "アイドリングストップ機能により、信号待ちなどで自動的にエンジンが停止します。ブレーキペダルから足を離すと自動的に再始動します。これは燃費向上のための正常な機能です。",
		Page:        35,
		Section:     "アイドリングストップシステム",
		ContentType: "specification",
	},
	{
		VehicleID:   "honda-fit-2020",
		Content:     "エンジンオイルの点検は、平坦な場所に駐車しエンジン停止後数分してから行ってください。オイルレベルゲージを抜き取り、付着したオイルを拭き取ってから再度差し込み、油量を確認します。",
		Page:        120,
		Section:     "エンジンオイルの点検",
		ContentType: "procedure",
	},
	{
		VehicleID:   "nissan-note-2021",
		Content:     "e-POWERシステムでは、減速時にエンジン音が大きくなることがあります。これは発電のためにエンジンが作動しているためで、異常ではありません。",
		Page:        50,
		Section:     "e-POWERシステムの特性",
		ContentType: "specification",
	},
	{
		VehicleID:   "nissan-note-2021",
		Content:     "走行中に焦げた臭いがする場合は、ブレーキの引きずりや配線の異常が考えられます。速やかに安全な場所に停車し、点検を受けてください。",
		Page:        95,
		Section:     "異常を感じたとき",
		ContentType: "warning",
		HasWarning:  true,
	},
	{
		VehicleID:   "suzuki-swift-2018",
		Content:     "寒冷時にエンジン始動直後、アイドリング回転数が高くなりますが、暖機のための正常な動作です。水温が上がると自動的に通常の回転数に戻ります。",
		Page:        28,
		Section:     "エンジンの始動",
		ContentType: "specification",
	},
	{
		VehicleID:   "suzuki-swift-2018",
		Content:     "タイヤの空気圧は月に一度、タイヤが冷えている状態で点検してください。指定空気圧は運転席ドア開口部のラベルに記載されています。",
		Page:        140,
		Section:     "タイヤの点検",
		ContentType: "procedure",
	},
}
