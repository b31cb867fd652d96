package populate

import (
	"fmt"
	"strings"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
)

// writeBusinessPlan fills the long-form narrative document. Every narrative
// cell is stamped with its section ID at generation time so the scorer never
// has to re-infer section identity from rendered text.
func (p *Populator) writeBusinessPlan(in Inputs, templateDir, outPath string) error {
	doc, err := loadDocumentTemplate(templateDir, config.ArtifactBusinessPlan)
	if err != nil {
		return err
	}

	sections := [][2]string{
		{"1-1", p.sectionCurrentState(in)},
		{"1-2", p.sectionManagementIssues(in)},
		{"1-3", p.sectionMotivation(in)},
		{"2-1", p.sectionBeforeAfter(in)},
		{"2-2", p.sectionEffects(in)},
		{"3-1", p.sectionProductivity(in)},
	}

	var rows [][]docmodel.Cell
	for _, s := range sections {
		id := s[0]
		spec := p.manifest.Section(id)
		title := id
		if spec != nil {
			title = fmt.Sprintf("%s %s", spec.ID, spec.Title)
		}
		rows = append(rows, []docmodel.Cell{
			{SectionID: id, Text: fmt.Sprintf("【%s】\n%s", title, s[1])},
		})
	}
	doc.Blocks = append(doc.Blocks, docmodel.Block{Type: docmodel.BlockTable, Rows: rows})

	if len(in.Diagrams) > 0 {
		var names []string
		for name := range in.Diagrams {
			names = append(names, name)
		}
		doc.Blocks = append(doc.Blocks, docmodel.Block{
			Type: docmodel.BlockParagraph,
			Text: fmt.Sprintf("別添図解: %s", strings.Join(names, "、")),
		})
	}

	return doc.Save(outPath)
}

func (p *Populator) sectionCurrentState(in Inputs) string {
	a := in.Applicant
	var sb strings.Builder
	fmt.Fprintf(&sb, "当社は%sに所在する%sの事業者であり、%sを主たる事業として営んでいる。", a.Address, a.Industry, a.BusinessDesc)
	fmt.Fprintf(&sb, "創業以来、地域の取引先や顧客との信頼関係を積み重ね、きめ細かな対応と確かな品質を強みとして事業を継続してきた。")
	fmt.Fprintf(&sb, "直近期（%s）の売上高は%s円、営業利益は%s円であった。", a.FiscalPeriodLatest, yen(a.LatestRevenue()), yen(a.LatestOperatingProfit()))
	fmt.Fprintf(&sb, "過去3期の売上高は%s円、%s円、%s円と推移しており、地域の需要に支えられ安定した事業基盤を有している。", yen(a.Revenue[0]), yen(a.Revenue[1]), yen(a.Revenue[2]))
	fmt.Fprintf(&sb, "組織体制は従業員%d名、役員%d名であり、代表者の%sを中心に、受注から納品までの一連の業務を少人数で分担して運営している。", a.EmployeeCount, a.OfficerCount, a.Representative)
	fmt.Fprintf(&sb, "現在の業務フローを見ると、%sをはじめとする工程に多くの人手と時間を要しており、熟練した担当者の経験に依存する部分が大きい。", a.LaborSaving.TargetTasks)
	fmt.Fprintf(&sb, "繁忙期には全従業員が本来業務に加えてこれらの作業を兼務せざるを得ず、一人当たりの業務負荷は年々増加する傾向にある。")
	fmt.Fprintf(&sb, "販売面では既存顧客からのリピート受注が売上の中心を占めており、引き合いそのものは堅調に推移しているものの、処理能力の上限が受注量の上限となっている。")
	fmt.Fprintf(&sb, "設備面では創業時から使用している既存の機器を維持しながら運営しているが、処理能力の抜本的な向上につながる投資はこれまで実施できていなかった。")
	fmt.Fprintf(&sb, "すなわち当社の成長の制約要因は需要ではなく供給側の人的リソースであり、限られた人員でいかに処理能力を高めるかが事業運営上の焦点となっている。")
	fmt.Fprintf(&sb, "こうした業務の現状を踏まえると、今後も事業を継続・拡大していくためには、人手に依存した業務プロセスそのものの見直しが不可欠な局面にある。")
	fmt.Fprintf(&sb, "当社としても業務手順の標準化や作業分担の工夫など運用面の改善は重ねてきたが、手作業を前提とする限り改善の余地には限界があり、設備面からの抜本的な対策が求められている。")
	return sb.String()
}

func (p *Populator) sectionManagementIssues(in Inputs) string {
	a := in.Applicant
	ls := a.LaborShortage
	var sb strings.Builder
	fmt.Fprintf(&sb, "当社の最大の経営課題は慢性的な人手不足である。特に%sの担い手が不足しており、現場の負担が著しく増している。", ls.ShortageTasks)
	fmt.Fprintf(&sb, "採用活動の実績を具体的に示すと、%sにわたりハローワークや求人媒体を通じて募集を行ったが、応募は%d件にとどまり、採用に至ったのはわずか%d名であった。", ls.RecruitmentPeriod, ls.Applications, ls.Hired)
	fmt.Fprintf(&sb, "地域の労働市場全体で生産年齢人口が減少するなか、同業他社との人材獲得競争も激しく、募集条件を引き上げても応募が集まらない状況が続いている。")
	fmt.Fprintf(&sb, "現在%d名の体制に対し、業務量から算定すると本来%d名が必要であり、不足分は既存従業員の時間外労働（月平均%.1f時間）によって補っているのが実情である。", ls.CurrentWorkers, ls.DesiredWorkers, ls.OvertimeHours)
	fmt.Fprintf(&sb, "残業の常態化は従業員の心身の疲弊を招き、離職リスクを高める。仮に熟練従業員が離職すれば残された従業員の負担はさらに増し、追加の離職を誘発する悪循環に陥りかねない。")
	fmt.Fprintf(&sb, "また採用活動の長期化は広告費や面接対応の工数といった採用コストの増大を招き、収益を直接圧迫する要因となっている。")
	fmt.Fprintf(&sb, "さらに、人手の制約により新規の引き合いを断らざるを得ない機会損失も発生しており、課題を放置すれば売上の維持すら困難になるおそれがある。")
	fmt.Fprintf(&sb, "このように人手不足は、従業員の健康、収益性、成長機会のすべてに影を落とす当社経営の根本課題となっている。")
	fmt.Fprintf(&sb, "加えて、時間外労働の削減は働き方改革関連法への対応としても待ったなしの課題であり、現状の長時間労働を前提とした業務運営を続けることは法令遵守の観点からも許容できない。")
	fmt.Fprintf(&sb, "人手の確保が構造的に困難である以上、採用強化のみに頼る解決策には限界がある。省力化投資によって業務そのものの人手依存度を下げ、一人当たりの生産性を高めることこそが、当社の経営課題を解決する現実的かつ持続可能な道筋である。")
	fmt.Fprintf(&sb, "なお、外部委託による対応も検討したが、品質管理と納期の両立が難しく費用面でも継続的な負担が大きいことから、自社内での省力化が最も合理的であると結論付けた。")
	return sb.String()
}

func (p *Populator) sectionMotivation(in Inputs) string {
	a := in.Applicant
	var sb strings.Builder
	if a.MotivationBackground != "" {
		sb.WriteString(a.MotivationBackground)
	}
	fmt.Fprintf(&sb, "前述のとおり、当社は採用活動を継続してもなお必要な人員を確保できておらず、既存従業員の長時間労働によって事業を維持している状態にある。")
	fmt.Fprintf(&sb, "この状況は時間の経過とともに悪化することはあっても自然に改善することは見込めず、人手不足が深刻化する今こそ、省力化設備の導入により業務構造を転換する必要があると判断した。")
	fmt.Fprintf(&sb, "本補助金を活用することで、自己資金のみでは数年を要した%sの導入を前倒しで実現でき、課題解決までの期間を大幅に短縮できる。", in.Equipment.Name)
	fmt.Fprintf(&sb, "導入により創出される時間は%sに充て、売上の拡大と従業員の処遇改善を同時に実現する。", a.TimeUtilizationPlan)
	fmt.Fprintf(&sb, "また、設備投資の時期を逸すれば人手不足による機会損失と従業員の負担増が累積していくことから、今このタイミングで投資を実行することに大きな意義がある。")
	fmt.Fprintf(&sb, "省力化による生産性向上と賃上げの好循環を確立することは、本補助金の趣旨とも合致するものであり、当社はその実現に全社を挙げて取り組む決意である。")
	fmt.Fprintf(&sb, "導入にあたっては代表者自らが推進責任者となり、従業員への説明と意見聴取を重ねたうえで運用体制を構築しており、全従業員が本事業の目的を共有して取り組む素地は既に整っている。")
	return sb.String()
}

func (p *Populator) sectionBeforeAfter(in Inputs) string {
	a := in.Applicant
	e := in.Equipment
	sv := a.LaborSaving
	var sb strings.Builder
	fmt.Fprintf(&sb, "【導入前の業務プロセス】導入前は%sを全て手作業で行っており、1日当たり%.1f時間を要している。", sv.TargetTasks, sv.CurrentHours)
	fmt.Fprintf(&sb, "作業は複数の工程に分かれており、各工程で担当者が対象物を確認し、手作業で処理し、結果を記録するという流れを繰り返している。")
	fmt.Fprintf(&sb, "担当者は作業の合間に接客や電話対応など他の業務を処理せざるを得ず、作業の中断と再開が頻発することで集中力が途切れ、全体の効率が低下している。")
	fmt.Fprintf(&sb, "また作業品質が担当者の熟練度に左右されるため、経験の浅い従業員が担当した場合には確認やり直しの工数が追加で発生しており、業務の属人化が生産性の足かせとなっている。")
	fmt.Fprintf(&sb, "【導入する設備】本事業では%s製の%s（型式:%s）を%d台導入する。", e.Manufacturer, e.Name, e.Model, e.Quantity)
	// Features interpolate directly; an empty value leaves the placeholder
	// span the patcher later fills.
	fmt.Fprintf(&sb, "本設備の主要機能として、%sが挙げられる。", e.Features)
	fmt.Fprintf(&sb, "設備の選定にあたっては複数の候補を比較検討し、当社の業務内容と設置スペース、処理能力の観点から本機種が最適であると判断した。")
	fmt.Fprintf(&sb, "本機種は同種の設備のなかでも操作が平易であり、特別な資格や長期間の訓練を要さずに全従業員が扱える点も、少人数体制の当社にとって重要な選定理由である。")
	fmt.Fprintf(&sb, "【導入後の業務プロセス】導入後は、従来の手作業工程を設備による自動処理に置き換え、従業員は段取り、設備への投入、完了後の品質確認に専念する体制へ移行する。")
	fmt.Fprintf(&sb, "対象業務の所要時間は1日当たり%.1f時間まで短縮される見込みであり、削減時間は1日当たり%.1f時間、削減率は%.1f%%に達する。", sv.TargetHours, sv.ReductionHours, sv.ReductionRate*100)
	fmt.Fprintf(&sb, "設備による処理は速度と品質が安定しているため、担当者の熟練度による品質のばらつきが解消され、確認やり直しの工数も削減される。")
	fmt.Fprintf(&sb, "これにより作業の属人性が解消され、繁忙期でも安定した処理能力を確保できるようになるとともに、経験の浅い従業員でも短期間で業務を担えるようになる。")
	fmt.Fprintf(&sb, "【導入スケジュールと習熟計画】設備の操作は%sによる導入時研修で習熟を図り、操作手順書を整備したうえで導入月内に通常運用へ移行する計画である。", e.Vendor)
	fmt.Fprintf(&sb, "導入初月は従来の手作業と並行稼働させて品質と処理能力を検証し、検証完了後に全面的に切り替えることで、移行に伴う業務への影響を最小限に抑える。")
	fmt.Fprintf(&sb, "運用開始後は処理件数と所要時間を毎月記録し、想定した削減効果が実現できているかを定期的に検証する。効果が計画を下回る場合には作業手順の見直しや設備設定の調整を行い、計画値の達成を確実なものとする。")
	fmt.Fprintf(&sb, "保守面では%sとの保守契約により定期点検と障害時の対応体制を確保し、設備の停止が業務に与える影響を最小化する。", e.Vendor)
	return sb.String()
}

func (p *Populator) sectionEffects(in Inputs) string {
	a := in.Applicant
	sv := a.LaborSaving
	var sb strings.Builder
	fmt.Fprintf(&sb, "省力化投資により期待される効果の第一は、労働時間の大幅な削減である。対象業務の所要時間は1日当たり%.1f時間削減され、年間では相当規模の工数が創出される。", sv.ReductionHours)
	fmt.Fprintf(&sb, "創出された時間は、%sなど、これまで人手の制約から十分に取り組めなかった付加価値の高い業務に再配分する。具体的には%sを計画している。", a.LaborShortage.ShortageTasks, a.TimeUtilizationPlan)
	fmt.Fprintf(&sb, "第二に、従業員の労働環境の改善である。常態化していた残業時間が削減されることで従業員の負担が軽減され、心身の健康維持と働きやすい職場環境の実現につながる。")
	fmt.Fprintf(&sb, "労働環境の改善は離職の防止に直結するとともに、求人時の訴求力を高め、採用難の緩和にも寄与することが期待される。")
	fmt.Fprintf(&sb, "第三に、売上拡大の機会獲得である。処理能力の向上により、これまで人手の制約から断らざるを得なかった受注にも対応できるようになり、機会損失が解消され売上の拡大が見込まれる。")
	fmt.Fprintf(&sb, "第四に、品質の安定である。設備による均一な処理により不良率の低減とやり直し工数の削減が期待され、顧客満足度の向上と信頼の獲得に寄与する。")
	fmt.Fprintf(&sb, "また業務の属人性が解消されることで、特定の従業員の休暇や急な欠勤が業務全体を停滞させるリスクも低減し、組織としての業務継続性が高まる。")
	fmt.Fprintf(&sb, "さらに、省力化により生まれた余力は新たなサービスの検討や業務改善の取り組みにも振り向けることができ、中長期的な競争力の強化につながる。")
	fmt.Fprintf(&sb, "これらの効果は相互に連関しており、省力化を起点として付加価値の増加と従業員への還元を両立させる好循環を生み出すことが本事業の狙いである。")
	fmt.Fprintf(&sb, "効果の発現状況は処理件数や残業時間などの指標で毎月把握し、計画との乖離があれば運用を見直すことで、投資効果を確実に定着させていく。")
	return sb.String()
}

func (p *Populator) sectionProductivity(in Inputs) string {
	a := in.Applicant
	base := in.Baseline
	params := in.Params
	var sb strings.Builder
	fmt.Fprintf(&sb, "本事業による生産性向上の成果は、付加価値額と給与支給総額の推移として定量的に示す。")
	fmt.Fprintf(&sb, "基準年度の付加価値額は%s円（営業利益%s円、人件費%s円、減価償却費%s円の合計）である。", yen(base.AddedValue), yen(base.OperatingProfit), yen(base.LaborCost), yen(base.Depreciation))
	for year := 1; year <= config.ProjectionYears; year++ {
		fmt.Fprintf(&sb, "%d年目の付加価値額は約%s円を見込む。", year, yen(finance.ProjectAddedValue(base, params, year)))
	}
	final := finance.ProjectAddedValue(base, params, config.ProjectionYears)
	cagr := finance.CAGR(float64(base.AddedValue), float64(final), config.ProjectionYears)
	fmt.Fprintf(&sb, "5年間の年平均成長率は%.1f%%であり、補助金の基準である年率%.1f%%以上を満たす計画である。", cagr*100, config.MinAddedValueCAGR*100)
	fmt.Fprintf(&sb, "この成長は、省力化による処理能力の向上を通じた売上の拡大と、創出時間の高付加価値業務への再配分によって裏付けられるものであり、単なる願望値ではなく業務プロセスの変化に根拠を持つ計画値である。")
	fmt.Fprintf(&sb, "付加価値額の内訳としては、処理能力の向上に伴う営業利益の増加が中核であり、これに賃上げによる人件費の計画的な増加と設備の減価償却費が加わる構成となっている。")
	fmt.Fprintf(&sb, "給与支給総額は基準年度の%s円から毎年引き上げ、5年目には%s円とする。", yen(base.Salary), yen(finance.ProjectSalary(base, params, config.ProjectionYears)))
	fmt.Fprintf(&sb, "賃上げは%sを対象に%sより実施し、引上げ率は年%.1f%%とする。賃上げの原資は本事業により増加する付加価値であり、無理のない持続可能な処遇改善となる。", a.WageIncreaseTarget, a.WageIncreaseTiming, a.WageIncreaseRate*100)
	fmt.Fprintf(&sb, "一人当たり給与支給総額についても毎年の引上げを継続し、地域の賃金水準を上回る処遇を実現することで、従業員が長く安心して働ける環境を整える。")
	fmt.Fprintf(&sb, "省力化により生み出した付加価値を従業員へ確実に還元することで、人材の定着と採用力の強化を図り、さらなる生産性向上への意欲を引き出す。当社はこの好循環を通じて、地域における持続的な雇用と成長の実現に貢献していく。")
	fmt.Fprintf(&sb, "計画の進捗は決算期ごとに付加価値額と給与支給総額の実績値で検証し、計画を下回る場合には原因を分析して販売施策や業務運用の改善策を講じる体制とする。")
	return sb.String()
}
